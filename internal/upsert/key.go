package upsert

import (
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"
)

// Key is the ordered tuple of stable fields that identifies a record across
// repeated synchronization runs. Mutable fields (status, timestamps, links)
// must never be part of a Key.
type Key struct {
	fields []string
}

// NewKey builds a Key from stable fields in a fixed order. Callers are
// responsible for passing the same fields in the same order on every run.
func NewKey(fields ...string) Key {
	copied := make([]string, len(fields))
	copy(copied, fields)
	return Key{fields: copied}
}

// String renders the key as a colon-delimited tuple.
func (k Key) String() string {
	return strings.Join(k.fields, ":")
}

// UUID derives a deterministic identifier by hashing the serialized tuple
// with SHA-256 and folding the first 16 bytes into a UUID. Equal tuples map
// to equal UUIDs on every run and every machine.
func (k Key) UUID() uuid.UUID {
	sum := sha256.Sum256([]byte(k.String()))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		// FromBytes only fails on length mismatch, which cannot happen here.
		panic(err)
	}
	return id
}
