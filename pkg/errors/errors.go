package errors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyKey      = errors.New("empty key")
	ErrInvalidData   = errors.New("invalid data type")
	ErrEntityExists  = errors.New("entity already exists")
	ErrTransfer      = errors.New("transfer failed")
	ErrMalformedFile = errors.New("malformed result file")
	ErrAlreadyVoted  = errors.New("already voted for this model")
)
