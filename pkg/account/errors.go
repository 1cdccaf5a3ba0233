package account

import "errors"

var (
	ErrDuplicateIdentifier = errors.New("account: username already exists")
	ErrInvalidCredential   = errors.New("account: invalid username or password")
	ErrNotFound            = errors.New("account: not found")
)
