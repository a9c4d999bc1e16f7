// Package token implements the external wire surface of the confidential
// transfer extension: account-extension parsing and bit-exact instruction
// payload encoding. Layouts here must match the external verifier byte
// for byte; nothing in this package interprets proofs.
package token

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// AddressSize is the width of an account address.
const AddressSize = 32

// Address identifies an account, program or proof context.
type Address [AddressSize]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether the address is all zeroes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, fmt.Errorf("token: address must be %d bytes, got %d", AddressSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// AccountMeta references an account used by an instruction, with its
// access roles.
type AccountMeta struct {
	Address  Address
	Signer   bool
	Writable bool
}

// Instruction is one opaque operation for the submission sink: a target
// program, the accounts it touches, and a binary payload.
type Instruction struct {
	Program  Address
	Accounts []AccountMeta
	Data     []byte
}

var (
	// ErrExtensionNotFound is returned when the requested extension type
	// is absent from an account's extension list.
	ErrExtensionNotFound = errors.New("token: extension not found")

	// ErrTruncatedExtension is returned when an extension list or payload
	// ends mid-record.
	ErrTruncatedExtension = errors.New("token: truncated extension data")
)
