package core

import (
	"fmt"
	"strings"
)

// TriState is a boolean that may be unknown. The zero value is Unknown, so a
// missing observation can never be read as false.
type TriState int8

// TriState values.
const (
	Unknown TriState = iota
	True
	False
)

// TriStateOf converts a known boolean.
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

// Known reports whether the value is True or False.
func (t TriState) Known() bool {
	return t == True || t == False
}

// Bool returns the boolean value and whether it is known.
func (t TriState) Bool() (value, known bool) {
	return t == True, t.Known()
}

// String returns "true", "false" or "unknown".
func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// ParseTriState accepts true/false in the usual spellings and treats empty,
// "unknown", "null" and "none" as Unknown.
func ParseTriState(s string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return True, nil
	case "false", "f", "no", "n", "0":
		return False, nil
	case "", "unknown", "null", "none":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("invalid tri-state value %q", s)
	}
}

// MarshalJSON encodes Unknown as null.
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (t *TriState) UnmarshalJSON(data []byte) error {
	v, err := ParseTriState(string(data))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
