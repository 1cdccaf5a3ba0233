// Package account keeps the in-memory set of known accounts: the two
// built-in seed accounts plus every account registered at runtime.
//
// Credentials are stored and compared in plaintext and there is no lockout
// or rate limiting. This mirrors the demo application it serves and must
// not be used to protect anything real.
//
// Registered accounts are mirrored through an AccountPersister after every
// registration, profile update and password change. Seed accounts are never
// persisted.
package account
