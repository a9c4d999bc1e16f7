// transfer.go - Composite proof for a confidential transfer.
//
// A transfer encrypts the amount once under a shared blinding factor and
// attaches one decryption handle per party, so sender and destination can
// each decrypt the same commitment. The proof bundle shows the encryption
// is well formed, the remaining source balance is non-negative, and the
// fresh balance commitment used by the range proof matches the homomorphic
// remainder.

package proofs

import (
	"fmt"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
)

// TransferAmountCiphertext is the shared-randomness encryption of a
// transfer amount: one commitment with a decryption handle per party.
type TransferAmountCiphertext struct {
	Commitment   pedersen.Commitment
	SenderHandle elgamal.DecryptHandle
	DestHandle   elgamal.DecryptHandle
}

// SenderCiphertext views the encrypted amount under the sender's key.
func (t *TransferAmountCiphertext) SenderCiphertext() *elgamal.Ciphertext {
	return &elgamal.Ciphertext{Commitment: t.Commitment, Handle: t.SenderHandle}
}

// DestCiphertext views the encrypted amount under the destination's key.
func (t *TransferAmountCiphertext) DestCiphertext() *elgamal.Ciphertext {
	return &elgamal.Ciphertext{Commitment: t.Commitment, Handle: t.DestHandle}
}

// TransferProof is the full proof bundle accompanying a transfer.
type TransferProof struct {
	EncryptedAmount     TransferAmountCiphertext
	NewSourceCommitment pedersen.Commitment

	// RangeCommitment is a fresh commitment to the remaining source
	// balance with a prover-known opening. The equality proof binds it to
	// NewSourceCommitment; the range proof is carried against it.
	RangeCommitment pedersen.Commitment

	Equality EqualityProof
	Validity ValidityProof
	Range    RangeProof
}

// TransferBundle carries a transfer proof together with the resulting
// ciphertexts a caller applies to account state.
type TransferBundle struct {
	Proof *TransferProof

	// NewSourceBalance is the sender's balance after subtracting the
	// encrypted amount.
	NewSourceBalance *elgamal.Ciphertext

	// DestCiphertext is the amount encrypted under the destination key,
	// to be added to the destination's pending balance.
	DestCiphertext *elgamal.Ciphertext
}

// TransferProver generates transfer and withdraw proof bundles.
type TransferProver struct {
	engine *elgamal.Engine
	ranger *RangeProver
}

// NewTransferProver builds a prover around the given decryption engine.
// A nil ranger falls back to the default serial range prover.
func NewTransferProver(engine *elgamal.Engine, ranger *RangeProver) *TransferProver {
	if ranger == nil {
		ranger = NewRangeProver()
	}
	return &TransferProver{engine: engine, ranger: ranger}
}

// GenerateTransferProof proves a transfer of amount from the sender's
// current balance to destPub. The source balance must decrypt under the
// sender's key and cover the amount, otherwise ErrInsufficientBalance.
func (tp *TransferProver) GenerateTransferProof(sourceBalance *elgamal.Ciphertext, amount uint64, sender *elgamal.Keypair, destPub elgamal.PublicKey) (*TransferBundle, error) {
	current, ok := tp.engine.Decrypt(sender.Secret, sourceBalance)
	if !ok {
		return nil, fmt.Errorf("source balance undecryptable: %w", ErrInsufficientBalance)
	}
	if current < amount {
		return nil, fmt.Errorf("balance %d < amount %d: %w", current, amount, ErrInsufficientBalance)
	}

	// Encrypt the amount once, handles for both parties under the same
	// blinding factor.
	amtOpening, err := pedersen.NewOpening()
	if err != nil {
		return nil, err
	}
	encAmt := TransferAmountCiphertext{
		Commitment:   *pedersen.Commit(amount, amtOpening),
		SenderHandle: elgamal.NewHandle(sender.Public, amtOpening),
		DestHandle:   elgamal.NewHandle(destPub, amtOpening),
	}

	newSource := sourceBalance.Sub(encAmt.SenderCiphertext())
	newAmount := current - amount

	// Fresh commitment to the remaining balance. Its opening is known, so
	// it can carry the range proof; the equality proof ties it back to the
	// homomorphic remainder.
	freshOpening, err := pedersen.NewOpening()
	if err != nil {
		return nil, err
	}
	fresh := pedersen.Commit(newAmount, freshOpening)

	equality, err := NewEqualityProof(sender, newSource, newAmount, freshOpening)
	if err != nil {
		return nil, fmt.Errorf("equality proof: %w", err)
	}
	validity, err := NewValidityProof(amount, amtOpening, []elgamal.PublicKey{sender.Public, destPub})
	if err != nil {
		return nil, fmt.Errorf("validity proof: %w", err)
	}
	rangeProof, err := tp.ranger.Prove(newAmount, fresh, freshOpening)
	if err != nil {
		return nil, fmt.Errorf("range proof: %w", err)
	}

	proof := &TransferProof{
		EncryptedAmount:     encAmt,
		NewSourceCommitment: newSource.Commitment,
		RangeCommitment:     *fresh,
		Equality:            *equality,
		Validity:            *validity,
		Range:               *rangeProof,
	}
	return &TransferBundle{
		Proof:            proof,
		NewSourceBalance: newSource,
		DestCiphertext:   encAmt.DestCiphertext(),
	}, nil
}

// VerifyTransferProof checks a transfer bundle against the sender's
// balance before the transfer.
func VerifyTransferProof(oldBalance *elgamal.Ciphertext, senderPub, destPub elgamal.PublicKey, proof *TransferProof) error {
	newSource := oldBalance.Sub(proof.EncryptedAmount.SenderCiphertext())

	// The carried remainder commitment must match the homomorphic one.
	if !proof.NewSourceCommitment.Equal(&newSource.Commitment) {
		return fmt.Errorf("source commitment mismatch: %w", ErrInvalidProof)
	}

	keys := []elgamal.PublicKey{senderPub, destPub}
	handles := []elgamal.DecryptHandle{proof.EncryptedAmount.SenderHandle, proof.EncryptedAmount.DestHandle}
	if err := proof.Validity.Verify(&proof.EncryptedAmount.Commitment, keys, handles); err != nil {
		return fmt.Errorf("amount validity: %w", err)
	}
	if err := proof.Equality.Verify(senderPub, newSource, &proof.RangeCommitment); err != nil {
		return fmt.Errorf("balance equality: %w", err)
	}
	if err := proof.Range.Verify(&proof.RangeCommitment); err != nil {
		return fmt.Errorf("balance range: %w", err)
	}
	return nil
}
