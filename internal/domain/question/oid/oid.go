// Package oid implements the native 12-byte record identifier.
//
// Layout: 4-byte big-endian unix seconds, 5 random bytes fixed per process,
// 3-byte big-endian counter. The textual form is 24 lowercase hex chars.
package oid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ID is a native record identifier.
type ID [12]byte

// Nil is the zero identifier.
var Nil ID

// ErrInvalidHex signals a malformed textual identifier.
var ErrInvalidHex = errors.New("oid: invalid hex identifier")

var (
	processUnique = newProcessUnique()
	counter       atomic.Uint32
)

func newProcessUnique() [5]byte {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("oid: read random bytes: %w", err))
	}
	return b
}

// New generates an identifier for the current time.
func New() ID {
	return NewAt(time.Now())
}

// NewAt generates an identifier with the given timestamp.
func NewAt(t time.Time) ID {
	var id ID
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))
	copy(id[4:9], processUnique[:])
	c := counter.Add(1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

// FromHex parses a 24-character hex string.
func FromHex(s string) (ID, error) {
	if len(s) != 24 {
		return Nil, fmt.Errorf("%w: %q has length %d", ErrInvalidHex, s, len(s))
	}
	var id ID
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return Nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return id, nil
}

// Hex returns the 24-character lowercase hex form.
func (id ID) Hex() string { return hex.EncodeToString(id[:]) }

func (id ID) String() string { return id.Hex() }

// IsZero reports whether id is the Nil identifier.
func (id ID) IsZero() bool { return id == Nil }

// Timestamp returns the creation time encoded in the identifier.
func (id ID) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0).UTC()
}

// MarshalText encodes the identifier as hex, which also makes it a valid
// JSON string and map key.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText decodes a hex identifier.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := FromHex(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
