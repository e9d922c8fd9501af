package answers

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidKey reports a configuration key that cannot be referenced from a
// template token.
var ErrInvalidKey = errors.New("answers: invalid key")

// Mapping is the flat key/value configuration a render pass substitutes into
// templates. A Mapping is immutable: every accessor returns copies and With
// returns a new value.
type Mapping struct {
	values map[string]string
}

// New validates the supplied keys and returns a Mapping holding a copy of
// values.
func New(values map[string]string) (Mapping, error) {
	out := make(map[string]string, len(values))
	for key, value := range values {
		if err := ValidateKey(key); err != nil {
			return Mapping{}, err
		}
		out[key] = value
	}
	return Mapping{values: out}, nil
}

// MustNew is New for literals known to be valid. It panics on invalid keys.
func MustNew(values map[string]string) Mapping {
	m, err := New(values)
	if err != nil {
		panic(err)
	}
	return m
}

// ValidateKey reports whether key can be used as a template identifier.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidKey, key, keyPattern.String())
	}
	return nil
}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Has reports whether key is present.
func (m Mapping) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Len returns the number of keys.
func (m Mapping) Len() int {
	return len(m.values)
}

// Keys returns the keys in lexical order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying values.
func (m Mapping) Map() map[string]string {
	out := make(map[string]string, len(m.values))
	for key, value := range m.values {
		out[key] = value
	}
	return out
}

// Context returns the values as a template context. When namespace is not
// empty the values are also exposed under that name so tokens such as
// {{ cookiecutter.project_slug }} resolve.
func (m Mapping) Context(namespace string) map[string]any {
	ctx := make(map[string]any, len(m.values)+1)
	nested := make(map[string]any, len(m.values))
	for key, value := range m.values {
		ctx[key] = value
		nested[key] = value
	}
	if namespace != "" {
		ctx[namespace] = nested
	}
	return ctx
}

// With returns a new Mapping with key set to value.
func (m Mapping) With(key, value string) (Mapping, error) {
	if err := ValidateKey(key); err != nil {
		return Mapping{}, err
	}
	out := m.Map()
	out[key] = value
	return Mapping{values: out}, nil
}

// Merge combines mappings; later mappings win on conflicting keys.
func Merge(mappings ...Mapping) Mapping {
	out := make(map[string]string)
	for _, m := range mappings {
		for key, value := range m.values {
			out[key] = value
		}
	}
	return Mapping{values: out}
}
