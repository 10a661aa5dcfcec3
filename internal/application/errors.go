package application

import "errors"

var (
	// ErrUnauthorizedTenant means the tenant id is missing, unknown, or its
	// stored credential is incomplete.
	ErrUnauthorizedTenant = errors.New("unauthorized tenant")

	// ErrInvalidCredentials means a credential mutation was attempted with an
	// empty tenant id or key. The store is left untouched.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrInvalidRequest means a request is missing a field the remote service
// needs before any remote call is made.
var ErrInvalidRequest = errors.New("invalid request")
