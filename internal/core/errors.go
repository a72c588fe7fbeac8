package core

import "errors"

var (
	// ErrUnreachable wraps transport failures: the request never got an answer.
	ErrUnreachable = errors.New("server unreachable")
	// ErrMalformedResponse marks an answer without the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)
