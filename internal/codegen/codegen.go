package codegen

import (
	"encoding/binary"

	"github.com/google/uuid"
)

const (
	Length   = 8
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

type Generator struct{}

func New() Generator {
	return Generator{}
}

// Generate draws a short url-safe code from a random uuid; uniqueness is probabilistic,
// the store rejects duplicates on insert
func (Generator) Generate() string {
	return FromUUID(uuid.New())
}

// FromUUID maps the low 8 bytes of a uuid (62 random bits) to Length characters of Alphabet
func FromUUID(id uuid.UUID) string {
	n := binary.BigEndian.Uint64(id[8:])
	base := uint64(len(Alphabet))
	code := make([]byte, Length)
	for i := range code {
		code[i] = Alphabet[n%base]
		n /= base
	}
	return string(code)
}
