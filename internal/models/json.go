package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ID is a positive row or user identifier. It decodes from a JSON number
// (exponent forms such as 1e3 included, as long as the value is whole) or a
// numeric string; anything else decodes to zero so that a "required" check
// rejects it.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	*id = 0
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, ok := ParseID(s); ok {
			*id = ID(n)
		}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return nil
	}
	if n, err := num.Int64(); err == nil {
		if n > 0 {
			*id = ID(n)
		}
		return nil
	}
	f, err := num.Float64()
	if err == nil && f >= 1 && f < math.MaxInt64 && f == math.Trunc(f) {
		*id = ID(int64(f))
	}
	return nil
}

func (id ID) Int64() int64 { return int64(id) }

// ParseID parses a positive decimal id from query or form input.
func ParseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Flag is an optional boolean that accepts true, false, 1 and 0. Any other
// value leaves it unset.
type Flag struct {
	Value bool
	Set   bool
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "true", "1":
		*f = Flag{Value: true, Set: true}
	case "false", "0":
		*f = Flag{Value: false, Set: true}
	default:
		*f = Flag{}
	}
	return nil
}

// OptionalString is set only when the JSON value is a string.
type OptionalString struct {
	Value string
	Set   bool
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*o = OptionalString{}
		return nil
	}
	*o = OptionalString{Value: s, Set: true}
	return nil
}

// NullIfBlank trims s and returns nil when nothing is left.
func NullIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
