// Package runid generates identifiers that group the result rows of one
// runner process. IDs are UUIDv7 values in Crockford base32, so they sort
// by start time.
package runid

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the encoded size of an ID.
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator builds IDs from a clock and a source of random bytes.
type Generator struct {
	Now    func() time.Time
	Random io.Reader
}

// New returns an ID from the wall clock and crypto/rand.
func New() (string, error) {
	return Generator{}.New()
}

func (g Generator) New() (string, error) {
	now, random := time.Now, io.Reader(rand.Reader)
	if g.Now != nil {
		now = g.Now
	}
	if g.Random != nil {
		random = g.Random
	}

	var uuid [16]byte
	ms := now().UnixMilli()
	for i := range 6 {
		uuid[i] = byte(ms >> (40 - 8*i))
	}
	if _, err := io.ReadFull(random, uuid[6:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return encoding.EncodeToString(uuid[:]), nil
}

// Validate checks that id could have come from New.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("run ID must be %d characters, got %d", Length, len(id))
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %q at position %d", c, i)
		}
	}
	return nil
}
