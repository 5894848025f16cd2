package roomcode

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"regexp"
	"strings"
)

const (
	// Length is the length of generated room codes
	Length = 6

	// Alphabet excludes characters that are easy to confuse when read aloud (0/O, 1/I)
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

//go:generate mockgen -package=mocks -destination=mocks/mock_generator.go github.com/KirkDiggler/codered/internal/common/roomcode Generator
type Generator interface {
	Generate() string
}

// DefaultGenerator draws codes from crypto/rand
type DefaultGenerator struct{}

func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

// Generate returns a random room code
func (g *DefaultGenerator) Generate() string {
	code := make([]byte, Length)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(Alphabet))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = Alphabet[rand.Intn(len(Alphabet))]
			continue
		}
		code[i] = Alphabet[n.Int64()]
	}
	return string(code)
}

// Normalize trims and upper-cases user supplied codes
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code is a well formed, normalized room code
func Valid(code string) bool {
	return codePattern.MatchString(code)
}
