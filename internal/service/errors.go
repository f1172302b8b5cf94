// Package service wires the pure scheduling and analytics components to
// storage. Input validation happens here; the core packages only ever see
// clean values.
package service

import "errors"

var (
	ErrCardNotFound   = errors.New("card not found")
	ErrDeckNotFound   = errors.New("deck not found")
	ErrEmptyBatch     = errors.New("review batch is empty")
	ErrInvalidQuality = errors.New("quality must be again, hard, good or easy")
	ErrInvalidLimit   = errors.New("limit must be positive")
	ErrInvalidRange   = errors.New("range end precedes start")
)
