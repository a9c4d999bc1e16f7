package proofs

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
)

func testEngine() *elgamal.Engine {
	return elgamal.New(elgamal.WithDecryptBound(1 << 20))
}

func testKeypair(t *testing.T, seed string) *elgamal.Keypair {
	t.Helper()
	kp, err := elgamal.GenerateKeypair([]byte(seed))
	require.NoError(t, err)
	return kp
}

func TestRangeProofRoundTrip(t *testing.T) {
	for _, amount := range []uint64{0, 1, 255, 1 << 20, ^uint64(0)} {
		opening, err := pedersen.NewOpening()
		require.NoError(t, err)
		commitment := pedersen.Commit(amount, opening)

		proof, err := GenerateRangeProof(amount, commitment, opening)
		require.NoError(t, err)
		require.NoError(t, proof.Verify(commitment))
	}
}

func TestRangeProofWrongCommitmentRejected(t *testing.T) {
	opening, err := pedersen.NewOpening()
	require.NoError(t, err)
	commitment := pedersen.Commit(42, opening)

	proof, err := GenerateRangeProof(42, commitment, opening)
	require.NoError(t, err)

	other, err := pedersen.NewOpening()
	require.NoError(t, err)
	wrong := pedersen.Commit(42, other)
	require.ErrorIs(t, proof.Verify(wrong), ErrInvalidProof)
}

func TestRangeProofTamperedScalarRejected(t *testing.T) {
	opening, err := pedersen.NewOpening()
	require.NoError(t, err)
	commitment := pedersen.Commit(7, opening)

	proof, err := GenerateRangeProof(7, commitment, opening)
	require.NoError(t, err)

	var one fr.Element
	one.SetOne()
	proof.THat.Add(&proof.THat, &one)
	require.ErrorIs(t, proof.Verify(commitment), ErrInvalidProof)
}

func TestValidityProofRoundTrip(t *testing.T) {
	sender := testKeypair(t, "validity-sender")
	dest := testKeypair(t, "validity-dest")

	opening, err := pedersen.NewOpening()
	require.NoError(t, err)
	commitment := pedersen.Commit(500, opening)
	keys := []elgamal.PublicKey{sender.Public, dest.Public}
	handles := []elgamal.DecryptHandle{
		elgamal.NewHandle(sender.Public, opening),
		elgamal.NewHandle(dest.Public, opening),
	}

	proof, err := NewValidityProof(500, opening, keys)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(commitment, keys, handles))
}

func TestValidityProofWrongHandleRejected(t *testing.T) {
	sender := testKeypair(t, "validity-sender-2")
	dest := testKeypair(t, "validity-dest-2")

	opening, err := pedersen.NewOpening()
	require.NoError(t, err)
	commitment := pedersen.Commit(500, opening)
	keys := []elgamal.PublicKey{sender.Public, dest.Public}

	proof, err := NewValidityProof(500, opening, keys)
	require.NoError(t, err)

	other, err := pedersen.NewOpening()
	require.NoError(t, err)
	handles := []elgamal.DecryptHandle{
		elgamal.NewHandle(sender.Public, opening),
		elgamal.NewHandle(dest.Public, other),
	}
	require.ErrorIs(t, proof.Verify(commitment, keys, handles), ErrInvalidProof)
}

func TestEqualityProofRoundTrip(t *testing.T) {
	eng := testEngine()
	kp := testKeypair(t, "equality-owner")

	ct, _, err := eng.Encrypt(kp.Public, 900)
	require.NoError(t, err)

	opening, err := pedersen.NewOpening()
	require.NoError(t, err)
	commitment := pedersen.Commit(900, opening)

	proof, err := NewEqualityProof(kp, ct, 900, opening)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(kp.Public, ct, commitment))
}

func TestEqualityProofWrongAmountRejected(t *testing.T) {
	eng := testEngine()
	kp := testKeypair(t, "equality-owner-2")

	ct, _, err := eng.Encrypt(kp.Public, 900)
	require.NoError(t, err)

	opening, err := pedersen.NewOpening()
	require.NoError(t, err)
	commitment := pedersen.Commit(901, opening)

	proof, err := NewEqualityProof(kp, ct, 901, opening)
	require.NoError(t, err)
	require.ErrorIs(t, proof.Verify(kp.Public, ct, commitment), ErrInvalidProof)
}

func TestTransferProofRoundTrip(t *testing.T) {
	eng := testEngine()
	sender := testKeypair(t, "transfer-sender")
	dest := testKeypair(t, "transfer-dest")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(sender.Public, 1000)
	require.NoError(t, err)

	bundle, err := prover.GenerateTransferProof(balance, 250, sender, dest.Public)
	require.NoError(t, err)
	require.NoError(t, VerifyTransferProof(balance, sender.Public, dest.Public, bundle.Proof))

	remaining, ok := eng.Decrypt(sender.Secret, bundle.NewSourceBalance)
	require.True(t, ok)
	require.Equal(t, uint64(750), remaining)

	received, ok := eng.Decrypt(dest.Secret, bundle.DestCiphertext)
	require.True(t, ok)
	require.Equal(t, uint64(250), received)
}

func TestTransferInsufficientBalance(t *testing.T) {
	eng := testEngine()
	sender := testKeypair(t, "transfer-sender-poor")
	dest := testKeypair(t, "transfer-dest-poor")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(sender.Public, 100)
	require.NoError(t, err)

	_, err = prover.GenerateTransferProof(balance, 101, sender, dest.Public)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestTransferUndecryptableBalance(t *testing.T) {
	eng := testEngine()
	sender := testKeypair(t, "transfer-sender-x")
	stranger := testKeypair(t, "transfer-stranger")
	dest := testKeypair(t, "transfer-dest-x")
	prover := NewTransferProver(eng, nil)

	// Balance encrypted under a different key cannot be decrypted by the
	// sender and must be treated as insufficient.
	balance, _, err := eng.Encrypt(stranger.Public, 1000)
	require.NoError(t, err)

	_, err = prover.GenerateTransferProof(balance, 10, sender, dest.Public)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestTransferZeroAndFullBalance(t *testing.T) {
	eng := testEngine()
	sender := testKeypair(t, "transfer-sender-edge")
	dest := testKeypair(t, "transfer-dest-edge")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(sender.Public, 100)
	require.NoError(t, err)

	for _, amount := range []uint64{0, 100} {
		bundle, err := prover.GenerateTransferProof(balance, amount, sender, dest.Public)
		require.NoError(t, err)
		require.NoError(t, VerifyTransferProof(balance, sender.Public, dest.Public, bundle.Proof))

		remaining, ok := eng.Decrypt(sender.Secret, bundle.NewSourceBalance)
		require.True(t, ok)
		require.Equal(t, 100-amount, remaining)
	}
}

func TestTamperedTransferProofRejected(t *testing.T) {
	eng := testEngine()
	sender := testKeypair(t, "transfer-sender-tamper")
	dest := testKeypair(t, "transfer-dest-tamper")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(sender.Public, 1000)
	require.NoError(t, err)

	bundle, err := prover.GenerateTransferProof(balance, 250, sender, dest.Public)
	require.NoError(t, err)

	// Swapping the handles breaks both the remainder recomputation and
	// the validity checks.
	tampered := *bundle.Proof
	tampered.EncryptedAmount.SenderHandle, tampered.EncryptedAmount.DestHandle =
		tampered.EncryptedAmount.DestHandle, tampered.EncryptedAmount.SenderHandle
	require.Error(t, VerifyTransferProof(balance, sender.Public, dest.Public, &tampered))

	// A proof verified against the wrong prior balance must fail.
	otherBalance, _, err := eng.Encrypt(sender.Public, 1000)
	require.NoError(t, err)
	require.Error(t, VerifyTransferProof(otherBalance, sender.Public, dest.Public, bundle.Proof))
}

func TestWithdrawProofRoundTrip(t *testing.T) {
	eng := testEngine()
	owner := testKeypair(t, "withdraw-owner")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(owner.Public, 1000)
	require.NoError(t, err)

	bundle, err := prover.GenerateWithdrawProof(balance, 400, owner)
	require.NoError(t, err)
	require.NoError(t, VerifyWithdrawProof(balance, owner.Public, bundle.Proof))

	remaining, ok := eng.Decrypt(owner.Secret, bundle.NewSourceBalance)
	require.True(t, ok)
	require.Equal(t, uint64(600), remaining)
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	eng := testEngine()
	owner := testKeypair(t, "withdraw-owner-poor")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(owner.Public, 10)
	require.NoError(t, err)

	_, err = prover.GenerateWithdrawProof(balance, 11, owner)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestWithdrawWrongAmountRejected(t *testing.T) {
	eng := testEngine()
	owner := testKeypair(t, "withdraw-owner-wrong")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(owner.Public, 1000)
	require.NoError(t, err)

	bundle, err := prover.GenerateWithdrawProof(balance, 400, owner)
	require.NoError(t, err)

	tampered := *bundle.Proof
	tampered.Amount = 399
	err = VerifyWithdrawProof(balance, owner.Public, &tampered)
	require.True(t, errors.Is(err, ErrInvalidProof))
}

func TestProofEncodedSizes(t *testing.T) {
	eng := testEngine()
	sender := testKeypair(t, "size-sender")
	dest := testKeypair(t, "size-dest")
	prover := NewTransferProver(eng, nil)

	balance, _, err := eng.Encrypt(sender.Public, 1000)
	require.NoError(t, err)

	transfer, err := prover.GenerateTransferProof(balance, 1, sender, dest.Public)
	require.NoError(t, err)
	require.Len(t, transfer.Proof.Bytes(), TransferProofSize)

	withdraw, err := prover.GenerateWithdrawProof(balance, 1, sender)
	require.NoError(t, err)
	require.Len(t, withdraw.Proof.Bytes(), WithdrawProofSize)
}
