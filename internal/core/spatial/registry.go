package spatial

import (
	"fmt"
	"math"
	"strings"
)

// pluralSuffix is stripped from labels so "unitIds" and "unit" name the same type.
const pluralSuffix = "Ids"

// TypeRegistry is the closed set of entity types an index accepts. It is
// immutable after construction and safe for concurrent reads.
type TypeRegistry struct {
	types   []EntityType
	buckets map[EntityType]BucketKey
}

// NewTypeRegistry normalizes every label and rejects empty or duplicate ones.
func NewTypeRegistry(labels ...string) (*TypeRegistry, error) {
	if len(labels) == 0 {
		return nil, ErrEmptyRegistry
	}
	if len(labels) > math.MaxUint16 {
		return nil, ErrTooManyTypes
	}

	r := &TypeRegistry{
		types:   make([]EntityType, 0, len(labels)),
		buckets: make(map[EntityType]BucketKey, len(labels)),
	}
	for _, label := range labels {
		t, ok := normalizeLabel(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, label)
		}
		if _, dup := r.buckets[t]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, t)
		}
		r.buckets[t] = BucketKey(len(r.types))
		r.types = append(r.types, t)
	}
	return r, nil
}

// MustTypeRegistry is NewTypeRegistry for static label sets.
func MustTypeRegistry(labels ...string) *TypeRegistry {
	r, err := NewTypeRegistry(labels...)
	if err != nil {
		panic(err)
	}
	return r
}

// Normalize maps a caller label onto a registered type. Labels outside the
// registry are rejected, never added.
func (r *TypeRegistry) Normalize(label string) (EntityType, bool) {
	t, ok := normalizeLabel(label)
	if !ok {
		return "", false
	}
	if _, known := r.buckets[t]; !known {
		return "", false
	}
	return t, true
}

// Bucket returns the bucket key of a registered type.
func (r *TypeRegistry) Bucket(t EntityType) (BucketKey, bool) {
	b, ok := r.buckets[t]
	return b, ok
}

// Types lists registered types in registration order.
func (r *TypeRegistry) Types() []EntityType {
	out := make([]EntityType, len(r.types))
	copy(out, r.types)
	return out
}

func (r *TypeRegistry) Len() int {
	return len(r.types)
}

func normalizeLabel(label string) (EntityType, bool) {
	s := strings.TrimSpace(label)
	s = strings.TrimSuffix(s, pluralSuffix)
	if s == "" {
		return "", false
	}
	return EntityType(s), true
}
