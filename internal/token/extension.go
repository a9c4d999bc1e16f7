// extension.go - TLV account-extension parsing.
//
// Account blobs carry an offset-delimited extension list of records
// {type u16 LE, length u16 LE, payload}. Only the confidential transfer
// account extension is interpreted here; other record types are walked
// over untouched.

package token

import (
	"encoding/binary"
	"fmt"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
)

// ExtensionType tags a TLV record.
type ExtensionType uint16

const (
	// ExtensionConfidentialTransferMint is the mint-level configuration
	// record.
	ExtensionConfidentialTransferMint ExtensionType = 4

	// ExtensionConfidentialTransferAccount is the per-account
	// confidential transfer state record.
	ExtensionConfidentialTransferAccount ExtensionType = 5
)

// ConfidentialAccountPayloadSize is the fixed payload width of the
// confidential transfer account extension: ElGamal pubkey (32), pending
// ciphertext (64), available ciphertext (64), flags (1), four u64
// counters (32).
const ConfidentialAccountPayloadSize = 32 + 64 + 64 + 1 + 4*8

const (
	flagTransfersEnabled         = 1 << 0
	flagAllowConfidentialCredits = 1 << 1
)

// Extension is one raw TLV record.
type Extension struct {
	Type    ExtensionType
	Payload []byte
}

// ParseExtensions walks a TLV region and returns every record. The
// payload slices alias data.
func ParseExtensions(data []byte) ([]Extension, error) {
	var out []Extension
	for off := 0; off < len(data); {
		if len(data)-off < 4 {
			return nil, fmt.Errorf("record header at offset %d: %w", off, ErrTruncatedExtension)
		}
		typ := ExtensionType(binary.LittleEndian.Uint16(data[off:]))
		length := int(binary.LittleEndian.Uint16(data[off+2:]))
		off += 4
		if len(data)-off < length {
			return nil, fmt.Errorf("record payload at offset %d: %w", off, ErrTruncatedExtension)
		}
		out = append(out, Extension{Type: typ, Payload: data[off : off+length]})
		off += length
	}
	return out, nil
}

// FindExtension returns the first record of the given type.
func FindExtension(data []byte, typ ExtensionType) ([]byte, error) {
	exts, err := ParseExtensions(data)
	if err != nil {
		return nil, err
	}
	for _, ext := range exts {
		if ext.Type == typ {
			return ext.Payload, nil
		}
	}
	return nil, fmt.Errorf("type %d: %w", typ, ErrExtensionNotFound)
}

// ConfidentialAccount is the decoded per-account confidential transfer
// state.
type ConfidentialAccount struct {
	ElGamalPubkey    elgamal.PublicKey
	PendingBalance   elgamal.Ciphertext
	AvailableBalance elgamal.Ciphertext

	TransfersEnabled         bool
	AllowConfidentialCredits bool

	PendingCreditCounter         uint64
	MaximumPendingCreditCounter  uint64
	ExpectedPendingCreditCounter uint64
	ActualPendingCreditCounter   uint64
}

// ParseConfidentialAccount extracts and decodes the confidential
// transfer account extension from a TLV region.
func ParseConfidentialAccount(data []byte) (*ConfidentialAccount, error) {
	payload, err := FindExtension(data, ExtensionConfidentialTransferAccount)
	if err != nil {
		return nil, err
	}
	return DecodeConfidentialAccount(payload)
}

// DecodeConfidentialAccount decodes the fixed-width extension payload.
func DecodeConfidentialAccount(payload []byte) (*ConfidentialAccount, error) {
	if len(payload) != ConfidentialAccountPayloadSize {
		return nil, fmt.Errorf("payload is %d bytes, want %d: %w",
			len(payload), ConfidentialAccountPayloadSize, ErrTruncatedExtension)
	}

	pk, err := elgamal.PublicKeyFromBytes(payload[0:32])
	if err != nil {
		return nil, fmt.Errorf("elgamal pubkey: %w", err)
	}
	pending, err := elgamal.CiphertextFromBytes(payload[32:96])
	if err != nil {
		return nil, fmt.Errorf("pending balance: %w", err)
	}
	available, err := elgamal.CiphertextFromBytes(payload[96:160])
	if err != nil {
		return nil, fmt.Errorf("available balance: %w", err)
	}

	flags := payload[160]
	counters := payload[161:]

	return &ConfidentialAccount{
		ElGamalPubkey:    pk,
		PendingBalance:   *pending,
		AvailableBalance: *available,

		TransfersEnabled:         flags&flagTransfersEnabled != 0,
		AllowConfidentialCredits: flags&flagAllowConfidentialCredits != 0,

		PendingCreditCounter:         binary.LittleEndian.Uint64(counters[0:]),
		MaximumPendingCreditCounter:  binary.LittleEndian.Uint64(counters[8:]),
		ExpectedPendingCreditCounter: binary.LittleEndian.Uint64(counters[16:]),
		ActualPendingCreditCounter:   binary.LittleEndian.Uint64(counters[24:]),
	}, nil
}

// EncodePayload produces the fixed-width extension payload.
func (a *ConfidentialAccount) EncodePayload() []byte {
	out := make([]byte, 0, ConfidentialAccountPayloadSize)
	pk := a.ElGamalPubkey.Bytes()
	out = append(out, pk[:]...)
	pending := a.PendingBalance.Bytes()
	out = append(out, pending[:]...)
	available := a.AvailableBalance.Bytes()
	out = append(out, available[:]...)

	var flags byte
	if a.TransfersEnabled {
		flags |= flagTransfersEnabled
	}
	if a.AllowConfidentialCredits {
		flags |= flagAllowConfidentialCredits
	}
	out = append(out, flags)

	out = binary.LittleEndian.AppendUint64(out, a.PendingCreditCounter)
	out = binary.LittleEndian.AppendUint64(out, a.MaximumPendingCreditCounter)
	out = binary.LittleEndian.AppendUint64(out, a.ExpectedPendingCreditCounter)
	out = binary.LittleEndian.AppendUint64(out, a.ActualPendingCreditCounter)
	return out
}

// AppendTLV appends the account state as a TLV record to dst.
func (a *ConfidentialAccount) AppendTLV(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, uint16(ExtensionConfidentialTransferAccount))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(ConfidentialAccountPayloadSize))
	return append(dst, a.EncodePayload()...)
}
