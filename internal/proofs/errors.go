package proofs

import "errors"

var (
	// ErrInsufficientBalance is returned when the source balance cannot
	// cover the requested amount, or cannot be decrypted at all.
	ErrInsufficientBalance = errors.New("proofs: insufficient source balance")

	// ErrInvalidProof is returned by every Verify when a check fails.
	ErrInvalidProof = errors.New("proofs: proof verification failed")
)
