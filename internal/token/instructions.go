// instructions.go - Bit-exact instruction payload encoding.
//
// Every confidential transfer sub-instruction starts with the two-byte
// discriminator pair {ExtensionInstruction, subOp}. Integers are little
// endian fixed width; public keys and commitments are raw 32-byte values
// at fixed offsets.

package token

import (
	"encoding/binary"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
)

// ExtensionInstruction is the token-program discriminator introducing a
// confidential transfer sub-instruction.
const ExtensionInstruction byte = 25

// SubOp enumerates the confidential transfer sub-instructions.
type SubOp byte

const (
	SubOpInitializeMint             SubOp = 0
	SubOpConfigureAccount           SubOp = 1
	SubOpApplyPendingBalance        SubOp = 3
	SubOpEnableConfidentialCredits  SubOp = 4
	SubOpDisableConfidentialCredits SubOp = 5
	SubOpWithdraw                   SubOp = 6
	SubOpDeposit                    SubOp = 7
	SubOpTransfer                   SubOp = 8
)

func prefix(op SubOp) []byte {
	return []byte{ExtensionInstruction, byte(op)}
}

// EncodeInitializeMint builds the mint-initialization payload:
// {25, 0, authority (32), autoApprove (1)}.
func EncodeInitializeMint(authority Address, autoApproveNewAccounts bool) []byte {
	out := append(prefix(SubOpInitializeMint), authority[:]...)
	if autoApproveNewAccounts {
		return append(out, 1)
	}
	return append(out, 0)
}

// EncodeConfigureAccount builds the account-configuration payload:
// {25, 1, elgamalPubkey (32), maxPendingCredits (u64 LE)}.
func EncodeConfigureAccount(pubkey elgamal.PublicKey, maxPendingCreditCounter uint64) []byte {
	pk := pubkey.Bytes()
	out := append(prefix(SubOpConfigureAccount), pk[:]...)
	return binary.LittleEndian.AppendUint64(out, maxPendingCreditCounter)
}

// EncodeApplyPendingBalance builds the pending-balance rollover payload:
// {25, 3, expectedPendingCreditCounter (u64 LE)}.
func EncodeApplyPendingBalance(expectedPendingCreditCounter uint64) []byte {
	return binary.LittleEndian.AppendUint64(prefix(SubOpApplyPendingBalance), expectedPendingCreditCounter)
}

// EncodeEnableConfidentialCredits builds {25, 4}.
func EncodeEnableConfidentialCredits() []byte {
	return prefix(SubOpEnableConfidentialCredits)
}

// EncodeDisableConfidentialCredits builds {25, 5}.
func EncodeDisableConfidentialCredits() []byte {
	return prefix(SubOpDisableConfidentialCredits)
}

// EncodeWithdraw builds the withdrawal payload:
// {25, 6, amount (u64 LE), decimals (1), proofContext (32)}.
// The proof context must hold an already verified withdraw proof.
func EncodeWithdraw(amount uint64, decimals byte, proofContext Address) []byte {
	out := binary.LittleEndian.AppendUint64(prefix(SubOpWithdraw), amount)
	out = append(out, decimals)
	return append(out, proofContext[:]...)
}

// EncodeDeposit builds the deposit payload:
// {25, 7, amount (u64 LE), decimals (1)}.
func EncodeDeposit(amount uint64, decimals byte) []byte {
	out := binary.LittleEndian.AppendUint64(prefix(SubOpDeposit), amount)
	return append(out, decimals)
}

// EncodeTransfer builds the transfer-execution payload:
// {25, 8, newSourceDecryptableBalance (64), proofContext (32)}.
// The proof context must hold an already verified transfer proof.
func EncodeTransfer(newSourceBalance *elgamal.Ciphertext, proofContext Address) []byte {
	ct := newSourceBalance.Bytes()
	out := append(prefix(SubOpTransfer), ct[:]...)
	return append(out, proofContext[:]...)
}

// Proof-program instruction tags. The proof program owns the ephemeral
// context accounts the coordinator creates, verifies into, and closes.
type ProofInstruction byte

const (
	ProofInstructionCloseContext   ProofInstruction = 0
	ProofInstructionVerifyTransfer ProofInstruction = 1
	ProofInstructionVerifyWithdraw ProofInstruction = 2
)

// EncodeVerifyTransfer attaches serialized transfer proof bytes to a
// context: {1, proof}.
func EncodeVerifyTransfer(proof []byte) []byte {
	return append([]byte{byte(ProofInstructionVerifyTransfer)}, proof...)
}

// EncodeVerifyWithdraw attaches serialized withdraw proof bytes to a
// context: {2, proof}.
func EncodeVerifyWithdraw(proof []byte) []byte {
	return append([]byte{byte(ProofInstructionVerifyWithdraw)}, proof...)
}

// EncodeCloseContext builds the context close payload: {0}. Rent flows
// to the instruction's designated recipient account.
func EncodeCloseContext() []byte {
	return []byte{byte(ProofInstructionCloseContext)}
}
