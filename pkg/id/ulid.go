// Package id provides sortable ID generation utilities.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strings"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDLength is the length of an encoded ULID.
const ULIDLength = 26

// timeChars is the number of leading characters that encode the timestamp.
const timeChars = 10

// ErrInvalidULID is returned when a string is not a well-formed ULID.
var ErrInvalidULID = errors.New("id: invalid ULID")

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier)
// for the current time.
func NewULID() string {
	return ULIDAt(time.Now())
}

// ULIDAt generates a ULID whose timestamp part is t.
// 48 bits of milliseconds followed by 80 random bits, Crockford Base32 encoded.
func ULIDAt(t time.Time) string {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], uint64(t.UnixMilli())<<16)
	if _, err := rand.Read(b[6:]); err != nil {
		// Degraded but unique enough within a process.
		binary.BigEndian.PutUint64(b[8:], uint64(time.Now().UnixNano()))
	}

	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	var out [ULIDLength]byte
	for k := range out {
		shift := uint(125 - 5*k)
		out[k] = crockfordBase32[shr(hi, lo, shift)&0x1F]
	}
	return string(out[:])
}

// Time returns the timestamp encoded in a ULID.
func Time(ulid string) (time.Time, error) {
	if len(ulid) != ULIDLength {
		return time.Time{}, ErrInvalidULID
	}
	var ms uint64
	for _, c := range strings.ToUpper(ulid[:timeChars]) {
		v := strings.IndexRune(crockfordBase32, c)
		if v < 0 {
			return time.Time{}, ErrInvalidULID
		}
		ms = ms<<5 | uint64(v)
	}
	return time.UnixMilli(int64(ms)), nil
}

// shr shifts the 128-bit value hi:lo right by s bits and returns the low word.
func shr(hi, lo uint64, s uint) uint64 {
	switch {
	case s >= 64:
		return hi >> (s - 64)
	case s == 0:
		return lo
	default:
		return lo>>s | hi<<(64-s)
	}
}
