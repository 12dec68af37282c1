package headers

import (
	"fmt"
	"strings"
)

var (
	ErrDuplicateHeader     = fmt.Errorf("duplicate header")
	ErrMalformedHeaderName = fmt.Errorf("malformed header name")
)

func isToken(str string) bool {
	if len(str) == 0 {
		return false
	}

	for _, ch := range []byte(str) {
		found := false
		if ch >= 'A' && ch <= 'Z' ||
			ch >= 'a' && ch <= 'z' ||
			ch >= '0' && ch <= '9' {
			found = true
		}
		switch ch {
		case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
			found = true
		}

		if !found {
			return false
		}
	}

	return true
}

type field struct {
	name  string
	value string
}

// Headers is an ordered header block. Names keep the case they were set
// with, lookups are case-insensitive and a name may appear only once.
type Headers struct {
	fields []field
	index  map[string]int
}

func NewHeaders() *Headers {
	return &Headers{
		index: map[string]int{},
	}
}

func (h *Headers) Get(name string) (string, bool) {
	i, ok := h.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return h.fields[i].value, true
}

// Set appends a new header. Setting a name that is already present fails.
func (h *Headers) Set(name string, value string) error {
	if !isToken(name) {
		return fmt.Errorf("%w: %q", ErrMalformedHeaderName, name)
	}

	key := strings.ToLower(name)
	if _, ok := h.index[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHeader, name)
	}

	h.index[key] = len(h.fields)
	h.fields = append(h.fields, field{name: name, value: value})
	return nil
}

func (h *Headers) ForEach(cb func(name, value string)) {
	for _, f := range h.fields {
		cb(f.name, f.value)
	}
}
