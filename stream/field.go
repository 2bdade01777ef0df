package stream

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Base indicates how a fixed-width ASCII numeric field is interpreted.
type Base int

const (
	// Decimal fields are left-aligned and padded with spaces (ar).
	Decimal Base = 10
	// Octal fields are zero-filled and terminated with a NUL (tar).
	Octal Base = 8
	// Hex fields are zero-filled to the full width without terminator (cpio).
	Hex Base = 16
)

// fieldCutset contains the padding bytes trimmed from both ends of a field.
const fieldCutset = " \x00"

func (base Base) isDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '7':
		return true
	case c == '8' || c == '9':
		return base != Octal
	case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		return base == Hex
	default:
		return false
	}
}

// Decode interprets the fixed-width field b as a non-negative integer in the given base.
//
// Leading and trailing spaces and NULs are trimmed first. A field that is empty after trimming decodes to 0. Any
// other non-digit content, including signs, returns an error wrapping ErrMalformedField.
func Decode(b []byte, base Base) (int64, error) {
	s := strings.Trim(string(b), fieldCutset)
	if s == "" {
		return 0, nil
	}

	for i := 0; i < len(s); i++ {
		if !base.isDigit(s[i]) {
			return 0, fmt.Errorf("%w: %q is not a base-%d number", ErrMalformedField, b, base)
		}
	}

	v, err := strconv.ParseInt(s, int(base), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedField, b, err)
	}

	return v, nil
}

// Encode writes v into the fixed-width field dst using the padding convention of base.
//
// Decimal values are left-aligned and padded with spaces. Octal values are zero-filled to len(dst)-1 digits and
// terminated with NUL. Hex values are zero-filled to len(dst) digits using upper-case letters.
func Encode(dst []byte, v int64, base Base) error {
	if v < 0 {
		return fmt.Errorf("%w: negative value %d", ErrMalformedField, v)
	}

	s := strconv.FormatInt(v, int(base))

	width := len(dst)
	if base == Octal {
		width--
	}
	if len(s) > width {
		return fmt.Errorf("%w: value %d does not fit in %d-byte base-%d field", ErrMalformedField, v, len(dst), base)
	}

	switch base {
	case Decimal:
		n := copy(dst, s)
		for i := n; i < len(dst); i++ {
			dst[i] = ' '
		}
	case Octal:
		pad := width - len(s)
		for i := 0; i < pad; i++ {
			dst[i] = '0'
		}
		copy(dst[pad:], s)
		dst[width] = 0
	default:
		s = strings.ToUpper(s)
		pad := width - len(s)
		for i := 0; i < pad; i++ {
			dst[i] = '0'
		}
		copy(dst[pad:], s)
	}

	return nil
}

// Text returns the field as a string with trailing spaces and NULs removed.
func Text(b []byte) string {
	return strings.TrimRight(string(b), fieldCutset)
}

// CString returns the field up to but not including its first NUL byte.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i != -1 {
		return string(b[:i])
	}

	return string(b)
}

// IsZero returns true if every byte of b is NUL.
func IsZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return true
}

// IsBase256 returns true if the field uses the GNU base-256 encoding (high bit of the first byte set).
func IsBase256(b []byte) bool {
	return len(b) > 0 && b[0]&0x80 != 0
}

// DecodeBase256 interprets b as a GNU base-256 big-endian integer.
//
// Negative values and values that overflow int64 return an error wrapping ErrMalformedField.
func DecodeBase256(b []byte) (int64, error) {
	if !IsBase256(b) {
		return 0, fmt.Errorf("%w: %q is not a base-256 number", ErrMalformedField, b)
	}
	if b[0]&0x40 != 0 {
		return 0, fmt.Errorf("%w: negative base-256 number", ErrMalformedField)
	}

	var v uint64
	for i, c := range b {
		if i == 0 {
			c &= 0x7f
		}
		if v>>56 != 0 {
			return 0, fmt.Errorf("%w: base-256 number overflows int64", ErrMalformedField)
		}
		v = v<<8 | uint64(c)
	}

	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: base-256 number overflows int64", ErrMalformedField)
	}

	return int64(v), nil
}
