package spatial

import "errors"

// Rejections returned by Index mutations. A rejected call leaves the index
// untouched; callers compare with errors.Is.
var (
	ErrInvalidType       = errors.New("spatial: entity type not registered")
	ErrTypeMismatch      = errors.New("spatial: entity already tracked under another type")
	ErrNotTracked        = errors.New("spatial: entity not tracked")
	ErrMalformedPosition = errors.New("spatial: malformed position")
)

// Registry construction errors.
var (
	ErrEmptyRegistry = errors.New("spatial: type registry needs at least one type")
	ErrDuplicateType = errors.New("spatial: type registered twice")
	ErrTooManyTypes  = errors.New("spatial: too many registered types")
)
