// Package crdt implements a state-based replicated text sequence.
//
// Every character is an element with a unique ID and the ID of the element it
// was inserted after. Siblings are ordered by descending ID and the text is the
// preorder walk of that tree with deleted elements skipped. State is a set of
// elements plus a set of deleted IDs, merge is set union, so replicas that have
// seen the same updates in any order, with any duplication, hold the same text.
package crdt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Element is one inserted character
type Element struct {
	ID     ID     `json:"id"`
	Parent ID     `json:"parent"`
	Value  string `json:"value"`
}

// Update is the wire form of both incremental updates and full state
type Update struct {
	Inserts []Element `json:"inserts,omitempty"`
	Deletes []ID      `json:"deletes,omitempty"`
}

// Document is a replica. It is not safe for concurrent use.
type Document struct {
	elements map[ID]Element
	deleted  map[ID]bool
	clock    uint64

	// order caches the preorder walk; nil when stale
	order []ID
}

// New returns an empty document
func New() *Document {
	return &Document{
		elements: make(map[ID]Element),
		deleted:  make(map[ID]bool),
	}
}

// Apply merges an encoded update or state. The whole update is rejected if
// any part of it is malformed.
func (d *Document) Apply(data []byte) error {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedUpdate, err)
	}
	if err := validate(&u); err != nil {
		return err
	}

	d.merge(&u)
	return nil
}

func validate(u *Update) error {
	for _, el := range u.Inserts {
		if el.ID.Clock == 0 || el.ID.Site == "" {
			return fmt.Errorf("%w: element without id", ErrMalformedUpdate)
		}
		// parents always precede their children, which keeps the tree acyclic
		if !el.Parent.IsRoot() && !el.Parent.Less(el.ID) {
			return fmt.Errorf("%w: element %d@%s precedes its parent", ErrMalformedUpdate, el.ID.Clock, el.ID.Site)
		}
		if el.Value == "" {
			return fmt.Errorf("%w: element %d@%s has no value", ErrMalformedUpdate, el.ID.Clock, el.ID.Site)
		}
	}
	for _, id := range u.Deletes {
		if id.IsRoot() {
			return fmt.Errorf("%w: delete of root", ErrMalformedUpdate)
		}
	}
	return nil
}

func (d *Document) merge(u *Update) {
	changed := false
	for _, el := range u.Inserts {
		d.observe(el.ID)
		if _, ok := d.elements[el.ID]; ok {
			continue
		}
		d.elements[el.ID] = el
		changed = true
	}
	for _, id := range u.Deletes {
		d.observe(id)
		if d.deleted[id] {
			continue
		}
		d.deleted[id] = true
		changed = true
	}
	if changed {
		d.order = nil
	}
}

func (d *Document) observe(id ID) {
	if id.Clock > d.clock {
		d.clock = id.Clock
	}
}

// EncodeState returns the full state in a canonical order
func (d *Document) EncodeState() []byte {
	u := Update{
		Inserts: make([]Element, 0, len(d.elements)),
		Deletes: make([]ID, 0, len(d.deleted)),
	}
	for _, el := range d.elements {
		u.Inserts = append(u.Inserts, el)
	}
	for id := range d.deleted {
		u.Deletes = append(u.Deletes, id)
	}
	sort.Slice(u.Inserts, func(i, j int) bool { return u.Inserts[i].ID.Less(u.Inserts[j].ID) })
	sort.Slice(u.Deletes, func(i, j int) bool { return u.Deletes[i].Less(u.Deletes[j]) })

	data, _ := json.Marshal(&u)
	return data
}

// Text returns the visible text
func (d *Document) Text() string {
	var b strings.Builder
	for _, id := range d.visible() {
		b.WriteString(d.elements[id].Value)
	}
	return b.String()
}

// Len returns the number of visible elements
func (d *Document) Len() int {
	return len(d.visible())
}

// Insert adds text so that its first character lands at the visible index.
// It returns the encoded update to send to other replicas.
func (d *Document) Insert(site string, index int, text string) ([]byte, error) {
	if site == "" {
		return nil, ErrEmptySite
	}
	visible := d.visible()
	if index < 0 || index > len(visible) {
		return nil, ErrIndexOutOfRange
	}

	parent := root
	if index > 0 {
		parent = visible[index-1]
	}

	u := Update{}
	for _, r := range text {
		d.clock++
		el := Element{ID: ID{Clock: d.clock, Site: site}, Parent: parent, Value: string(r)}
		u.Inserts = append(u.Inserts, el)
		parent = el.ID
	}
	d.merge(&u)

	data, _ := json.Marshal(&u)
	return data, nil
}

// Delete removes length visible elements starting at index and returns the encoded update
func (d *Document) Delete(index, length int) ([]byte, error) {
	visible := d.visible()
	if index < 0 || length < 0 || index+length > len(visible) {
		return nil, ErrIndexOutOfRange
	}

	u := Update{Deletes: append([]ID(nil), visible[index:index+length]...)}
	d.merge(&u)

	data, _ := json.Marshal(&u)
	return data, nil
}

func (d *Document) visible() []ID {
	order := d.walk()
	visible := make([]ID, 0, len(order))
	for _, id := range order {
		if !d.deleted[id] {
			visible = append(visible, id)
		}
	}
	return visible
}

// walk returns every element reachable from root in preorder. Elements whose
// parent has not arrived yet stay out of the walk until it does.
func (d *Document) walk() []ID {
	if d.order != nil {
		return d.order
	}

	children := make(map[ID][]ID, len(d.elements))
	for id, el := range d.elements {
		children[el.Parent] = append(children[el.Parent], id)
	}
	for _, ids := range children {
		sort.Slice(ids, func(i, j int) bool { return ids[j].Less(ids[i]) })
	}

	order := make([]ID, 0, len(d.elements))
	stack := pushReversed(nil, children[root])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)
		stack = pushReversed(stack, children[id])
	}

	d.order = order
	return order
}

func pushReversed(stack, ids []ID) []ID {
	for i := len(ids) - 1; i >= 0; i-- {
		stack = append(stack, ids[i])
	}
	return stack
}
