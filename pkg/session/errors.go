package session

import (
	"errors"

	"github.com/dmitrymomot/eventhub/pkg/account"
)

var (
	// ErrNotAuthenticated indicates the operation needs a logged-in session.
	ErrNotAuthenticated = errors.New("session.not_authenticated")

	// ErrInvalidCredential is returned by Login and ChangePassword.
	// It is the same value as account.ErrInvalidCredential.
	ErrInvalidCredential = account.ErrInvalidCredential
)
