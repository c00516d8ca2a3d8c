// Package driveid provides a type-safe drive identifier for Graph API drive
// URLs. It consolidates normalization so configuration, CLI flags and
// environment variables all produce the same value.
//
// This is a leaf package with zero external dependencies beyond stdlib.
package driveid

import (
	"encoding"
	"fmt"
	"strings"
)

// idMinLength is the minimum length for a normalized personal drive ID.
// Personal accounts sometimes report 15-character IDs (documented API bug);
// short IDs are zero-padded to this length.
const idMinLength = 16

// businessPrefix marks SharePoint / OneDrive for Business drive IDs. These
// are base64-derived and case-sensitive, so they are never case-folded.
const businessPrefix = "b!"

// ID is a normalized Graph API drive identifier. The zero value (ID{})
// represents an absent or unconfigured drive.
type ID struct {
	value string
}

// New creates a normalized ID from a raw drive identifier. Surrounding
// whitespace is trimmed. Business IDs ("b!...") are kept byte-for-byte;
// personal (hex) IDs are lowercased and left-padded with zeros. Empty input
// returns the zero ID.
func New(raw string) ID {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ID{}
	}

	if IsBusiness(trimmed) || !isHex(trimmed) {
		return ID{value: trimmed}
	}

	lower := strings.ToLower(trimmed)
	if len(lower) >= idMinLength {
		return ID{value: lower}
	}

	return ID{value: strings.Repeat("0", idMinLength-len(lower)) + lower}
}

// IsBusiness reports whether raw looks like a SharePoint / Business drive ID.
func IsBusiness(raw string) bool {
	return strings.HasPrefix(raw, businessPrefix)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}

	return true
}

// String returns the normalized drive ID string.
func (id ID) String() string {
	return id.value
}

// IsZero reports whether this is the zero-value ID (empty or all zeros).
func (id ID) IsZero() bool {
	return id.value == "" || id.value == strings.Repeat("0", idMinLength)
}

// Equal reports whether two IDs are identical. Both zero-value forms are
// considered equal.
func (id ID) Equal(other ID) bool {
	if id.value == other.value {
		return true
	}

	return id.IsZero() && other.IsZero()
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The input is
// normalized just like New(), so TOML values decode directly into an ID.
func (id *ID) UnmarshalText(text []byte) error {
	*id = New(string(text))
	return nil
}

// Compile-time interface assertions.
var (
	_ encoding.TextMarshaler   = ID{}
	_ encoding.TextUnmarshaler = (*ID)(nil)
	_ fmt.Stringer             = ID{}
)
