package crdt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_InsertAndDelete(t *testing.T) {
	doc := New()

	_, err := doc.Insert("a", 0, "hello")
	require.NoError(t, err)
	_, err = doc.Insert("a", 5, " world")
	require.NoError(t, err)
	_, err = doc.Insert("a", 0, ">")
	require.NoError(t, err)
	assert.Equal(t, ">hello world", doc.Text())

	_, err = doc.Delete(1, 6)
	require.NoError(t, err)
	assert.Equal(t, ">world", doc.Text())
	assert.Equal(t, 6, doc.Len())

	_, err = doc.Insert("a", 3, "--")
	require.NoError(t, err)
	assert.Equal(t, ">wo--rld", doc.Text())
}

func TestDocument_BoundsAndSite(t *testing.T) {
	doc := New()

	_, err := doc.Insert("", 0, "x")
	assert.ErrorIs(t, err, ErrEmptySite)

	_, err = doc.Insert("a", 1, "x")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = doc.Delete(0, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDocument_ApplyRejectsMalformed(t *testing.T) {
	doc := New()

	cases := map[string]string{
		"not json":        `{"inserts":`,
		"missing id":      `{"inserts":[{"id":{"c":0,"s":""},"parent":{"c":0,"s":""},"value":"x"}]}`,
		"child of future": `{"inserts":[{"id":{"c":1,"s":"a"},"parent":{"c":5,"s":"a"},"value":"x"}]}`,
		"empty value":     `{"inserts":[{"id":{"c":1,"s":"a"},"parent":{"c":0,"s":""},"value":""}]}`,
		"delete root":     `{"deletes":[{"c":0,"s":""}]}`,
	}
	for name, data := range cases {
		err := doc.Apply([]byte(data))
		assert.ErrorIs(t, err, ErrMalformedUpdate, name)
	}
	assert.Equal(t, "", doc.Text())
}

func TestDocument_ConcurrentInsertsConverge(t *testing.T) {
	a := New()
	b := New()

	seed, err := a.Insert("a", 0, "ac")
	require.NoError(t, err)
	require.NoError(t, b.Apply(seed))

	// both sites type at the same position without seeing each other
	fromA, err := a.Insert("a", 1, "X")
	require.NoError(t, err)
	fromB, err := b.Insert("b", 1, "Y")
	require.NoError(t, err)

	require.NoError(t, a.Apply(fromB))
	require.NoError(t, b.Apply(fromA))

	assert.Equal(t, a.Text(), b.Text())
	assert.Len(t, a.Text(), 4)
	assert.Equal(t, a.EncodeState(), b.EncodeState())
}

func TestDocument_DeleteBeforeInsertArrives(t *testing.T) {
	a := New()
	insert, err := a.Insert("a", 0, "abc")
	require.NoError(t, err)
	del, err := a.Delete(1, 1)
	require.NoError(t, err)

	b := New()
	require.NoError(t, b.Apply(del))
	assert.Equal(t, "", b.Text())
	require.NoError(t, b.Apply(insert))

	assert.Equal(t, "ac", a.Text())
	assert.Equal(t, "ac", b.Text())
}

func TestDocument_ChildBeforeParentArrives(t *testing.T) {
	a := New()
	first, err := a.Insert("a", 0, "ab")
	require.NoError(t, err)
	second, err := a.Insert("a", 2, "cd")
	require.NoError(t, err)

	b := New()
	require.NoError(t, b.Apply(second))
	assert.Equal(t, "", b.Text())
	require.NoError(t, b.Apply(first))
	assert.Equal(t, "abcd", b.Text())
}

func TestDocument_ApplyStateIsIdempotent(t *testing.T) {
	a := New()
	_, err := a.Insert("a", 0, "func main() {}")
	require.NoError(t, err)

	b := New()
	require.NoError(t, b.Apply(a.EncodeState()))
	require.NoError(t, b.Apply(a.EncodeState()))
	require.NoError(t, b.Apply(b.EncodeState()))

	assert.Equal(t, a.Text(), b.Text())
}

// Three replicas edit concurrently; every replica then receives every update
// in its own random order, with duplicates. All replicas end with the same text.
func TestDocument_AnyDeliveryOrderConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	base := New()
	seed, err := base.Insert("server", 0, "function sum(a, b) { return a + b; }")
	require.NoError(t, err)

	sites := []string{"alice", "bob", "carol"}
	replicas := make([]*Document, len(sites))
	var updates [][]byte
	for i, site := range sites {
		replicas[i] = New()
		require.NoError(t, replicas[i].Apply(seed))

		for step := 0; step < 20; step++ {
			doc := replicas[i]
			var u []byte
			if doc.Len() > 0 && rng.Intn(3) == 0 {
				u, err = doc.Delete(rng.Intn(doc.Len()), 1)
			} else {
				u, err = doc.Insert(site, rng.Intn(doc.Len()+1), string(rune('a'+rng.Intn(26))))
			}
			require.NoError(t, err)
			updates = append(updates, u)
		}
	}

	for _, doc := range replicas {
		order := rng.Perm(len(updates))
		for _, idx := range order {
			require.NoError(t, doc.Apply(updates[idx]))
			if rng.Intn(4) == 0 {
				require.NoError(t, doc.Apply(updates[idx]))
			}
		}
	}

	// a fresh replica built from state alone agrees too
	late := New()
	require.NoError(t, late.Apply(seed))
	require.NoError(t, late.Apply(replicas[0].EncodeState()))

	for _, doc := range replicas[1:] {
		assert.Equal(t, replicas[0].Text(), doc.Text())
		assert.Equal(t, replicas[0].EncodeState(), doc.EncodeState())
	}
	assert.Equal(t, replicas[0].Text(), late.Text())
}
