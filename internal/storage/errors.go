package storage

import "errors"

var (
	ErrStoreUnreachable  = errors.New("content store unreachable")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
