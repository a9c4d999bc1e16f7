package token

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
)

func testAccount(t *testing.T) *ConfidentialAccount {
	t.Helper()
	kp, err := elgamal.GenerateKeypair([]byte("token-test-owner"))
	require.NoError(t, err)

	eng := elgamal.New(elgamal.WithDecryptBound(1 << 16))
	pending, _, err := eng.Encrypt(kp.Public, 12)
	require.NoError(t, err)
	available, _, err := eng.Encrypt(kp.Public, 345)
	require.NoError(t, err)

	return &ConfidentialAccount{
		ElGamalPubkey:    kp.Public,
		PendingBalance:   *pending,
		AvailableBalance: *available,

		TransfersEnabled:         true,
		AllowConfidentialCredits: true,

		PendingCreditCounter:         3,
		MaximumPendingCreditCounter:  65536,
		ExpectedPendingCreditCounter: 3,
		ActualPendingCreditCounter:   2,
	}
}

func TestConfidentialAccountRoundTrip(t *testing.T) {
	acc := testAccount(t)

	payload := acc.EncodePayload()
	require.Len(t, payload, ConfidentialAccountPayloadSize)

	decoded, err := DecodeConfidentialAccount(payload)
	require.NoError(t, err)
	require.True(t, decoded.ElGamalPubkey.Equal(acc.ElGamalPubkey))
	require.Equal(t, acc.PendingBalance.Bytes(), decoded.PendingBalance.Bytes())
	require.Equal(t, acc.AvailableBalance.Bytes(), decoded.AvailableBalance.Bytes())
	require.True(t, decoded.TransfersEnabled)
	require.True(t, decoded.AllowConfidentialCredits)
	require.Equal(t, uint64(65536), decoded.MaximumPendingCreditCounter)
	require.Equal(t, uint64(2), decoded.ActualPendingCreditCounter)
}

func TestParseConfidentialAccountSkipsOtherRecords(t *testing.T) {
	acc := testAccount(t)

	// Unknown record first, then the confidential transfer record.
	var blob []byte
	blob = binary.LittleEndian.AppendUint16(blob, 9)
	blob = binary.LittleEndian.AppendUint16(blob, 3)
	blob = append(blob, 0xaa, 0xbb, 0xcc)
	blob = acc.AppendTLV(blob)

	decoded, err := ParseConfidentialAccount(blob)
	require.NoError(t, err)
	require.True(t, decoded.ElGamalPubkey.Equal(acc.ElGamalPubkey))

	exts, err := ParseExtensions(blob)
	require.NoError(t, err)
	require.Len(t, exts, 2)
	require.Equal(t, ExtensionType(9), exts[0].Type)
}

func TestParseExtensionsTruncated(t *testing.T) {
	var blob []byte
	blob = binary.LittleEndian.AppendUint16(blob, uint16(ExtensionConfidentialTransferAccount))
	blob = binary.LittleEndian.AppendUint16(blob, 100)
	blob = append(blob, 1, 2, 3)

	_, err := ParseExtensions(blob)
	require.ErrorIs(t, err, ErrTruncatedExtension)

	_, err = ParseExtensions([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrTruncatedExtension)
}

func TestParseConfidentialAccountMissing(t *testing.T) {
	var blob []byte
	blob = binary.LittleEndian.AppendUint16(blob, 9)
	blob = binary.LittleEndian.AppendUint16(blob, 0)

	_, err := ParseConfidentialAccount(blob)
	require.ErrorIs(t, err, ErrExtensionNotFound)
}

func TestDecodeConfidentialAccountBadLength(t *testing.T) {
	_, err := DecodeConfidentialAccount(make([]byte, ConfidentialAccountPayloadSize-1))
	require.ErrorIs(t, err, ErrTruncatedExtension)
}

func TestInstructionPayloadLayouts(t *testing.T) {
	var authority Address
	authority[0] = 0x11
	authority[31] = 0x22

	init := EncodeInitializeMint(authority, true)
	require.Len(t, init, 35)
	require.Equal(t, []byte{ExtensionInstruction, byte(SubOpInitializeMint)}, init[:2])
	require.Equal(t, authority[:], init[2:34])
	require.Equal(t, byte(1), init[34])

	kp, err := elgamal.GenerateKeypair([]byte("token-test-configure"))
	require.NoError(t, err)
	cfg := EncodeConfigureAccount(kp.Public, 65536)
	require.Len(t, cfg, 42)
	require.Equal(t, byte(SubOpConfigureAccount), cfg[1])
	pk := kp.Public.Bytes()
	require.Equal(t, pk[:], cfg[2:34])
	require.Equal(t, uint64(65536), binary.LittleEndian.Uint64(cfg[34:]))

	apply := EncodeApplyPendingBalance(7)
	require.Equal(t, []byte{25, 3, 7, 0, 0, 0, 0, 0, 0, 0}, apply)

	require.Equal(t, []byte{25, 4}, EncodeEnableConfidentialCredits())
	require.Equal(t, []byte{25, 5}, EncodeDisableConfidentialCredits())

	var ctxAddr Address
	ctxAddr[5] = 0x99
	withdraw := EncodeWithdraw(1000, 6, ctxAddr)
	require.Len(t, withdraw, 43)
	require.Equal(t, byte(SubOpWithdraw), withdraw[1])
	require.Equal(t, uint64(1000), binary.LittleEndian.Uint64(withdraw[2:]))
	require.Equal(t, byte(6), withdraw[10])
	require.Equal(t, ctxAddr[:], withdraw[11:])

	deposit := EncodeDeposit(500, 6)
	require.Len(t, deposit, 11)
	require.Equal(t, byte(SubOpDeposit), deposit[1])
	require.Equal(t, uint64(500), binary.LittleEndian.Uint64(deposit[2:]))

	eng := elgamal.New(elgamal.WithDecryptBound(1 << 16))
	ct, _, err := eng.Encrypt(kp.Public, 1)
	require.NoError(t, err)
	transfer := EncodeTransfer(ct, ctxAddr)
	require.Len(t, transfer, 2+64+32)
	require.Equal(t, byte(SubOpTransfer), transfer[1])
	ctBytes := ct.Bytes()
	require.Equal(t, ctBytes[:], transfer[2:66])
	require.Equal(t, ctxAddr[:], transfer[66:])
}

func TestProofProgramPayloads(t *testing.T) {
	proof := []byte{0xde, 0xad, 0xbe, 0xef}
	require.Equal(t, append([]byte{1}, proof...), EncodeVerifyTransfer(proof))
	require.Equal(t, append([]byte{2}, proof...), EncodeVerifyWithdraw(proof))
	require.Equal(t, []byte{0}, EncodeCloseContext())
}

func TestAddress(t *testing.T) {
	var a Address
	require.True(t, a.IsZero())

	b, err := AddressFromBytes(make([]byte, 32))
	require.NoError(t, err)
	require.True(t, b.IsZero())

	_, err = AddressFromBytes(make([]byte, 31))
	require.Error(t, err)
}
