package game

import "errors"

var (
	ErrInvalidPosition   = errors.New("invalid card position")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidPhase      = errors.New("invalid phase")
	ErrEngineStopped     = errors.New("match engine is not running")
	ErrNoGame            = errors.New("no game in progress")
	ErrEmptyCatalog      = errors.New("card catalog is empty")
	ErrDuplicateCard     = errors.New("duplicate card id in catalog")
)
