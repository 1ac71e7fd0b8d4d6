package duel

import "errors"

var (
	ErrNilCatalog  = errors.New("catalog is required")
	ErrNilBackend  = errors.New("predictor backend is required")
	ErrUnknownWord = errors.New("word is not in the catalog")
	ErrBlankSystem = errors.New("system word is blank")
)

type ConfigError string

func (e ConfigError) Error() string { return "invalid config: " + string(e) }

func ErrInvalidConfig(msg string) error { return ConfigError(msg) }
