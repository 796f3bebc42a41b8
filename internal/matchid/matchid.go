// Package matchid generates sortable match identifiers: a UUIDv7 encoded
// as 26 lowercase Crockford base32 characters.
package matchid

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet, lowercase.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator produces match ids. The zero value draws randomness from
// crypto/rand.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a generator reading random bits from r. A nil r
// uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new match id.
func Generate() string {
	id, err := (&Generator{}).Next()
	if err != nil {
		panic("matchid: " + err.Error())
	}
	return id
}

// Next returns the next id.
func (g *Generator) Next() (string, error) {
	var (
		u   uuid.UUID
		err error
	)
	if g.rand != nil {
		u, err = uuid.NewV7FromReader(g.rand)
	} else {
		u, err = uuid.NewV7()
	}
	if err != nil {
		return "", fmt.Errorf("generate uuidv7: %w", err)
	}
	return encodeBase32(u), nil
}

// encodeBase32 encodes 128 bits as 26 characters, 5 bits at a time; the
// final character carries the last 3 bits padded with zeros.
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}
	return string(result)
}

// Validate checks that id is 26 characters of the match id alphabet.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("match id must be exactly 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("match id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if indexOf(id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}

func indexOf(c byte) int {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return i
		}
	}
	return -1
}
