package word

import "errors"

var (
	ErrEmptyCatalog  = errors.New("catalog is empty")
	ErrDuplicateWord = errors.New("duplicate catalog word")
	ErrInvalidWord   = errors.New("invalid catalog word")
)
