package event

import "errors"

var (
	ErrNotFound            = errors.New("event: not found")
	ErrEventFull           = errors.New("event: no seats left")
	ErrRegistrationClosed  = errors.New("event: registration closed")
	ErrInvalidSeed         = errors.New("event: invalid seed file")
	ErrDuplicateIdentifier = errors.New("event: duplicate id")
)
