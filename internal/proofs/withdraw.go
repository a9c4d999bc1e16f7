// withdraw.go - Composite proof for a withdrawal to public balance.
//
// The withdrawn amount is public, so its "encryption" is the ciphertext
// with a zero blinding factor: commitment amount*G, identity handle. The
// proof covers only the remaining balance: an equality proof binding the
// homomorphic remainder to a fresh commitment, and a range proof on that
// commitment.

package proofs

import (
	"fmt"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
)

// WithdrawProof accompanies a withdrawal of a public amount.
type WithdrawProof struct {
	// Amount is the public withdrawn amount.
	Amount uint64

	// NewSourceCommitment is the homomorphic remainder commitment,
	// old commitment minus Amount*G.
	NewSourceCommitment pedersen.Commitment

	// RangeCommitment is a fresh commitment to the remaining balance
	// carrying the range proof.
	RangeCommitment pedersen.Commitment

	Equality EqualityProof
	Range    RangeProof
}

// EncryptedAmount returns the zero-blinding ciphertext of the public
// amount, as applied to account state by a verifier.
func (p *WithdrawProof) EncryptedAmount() *elgamal.Ciphertext {
	var zero elgamal.Ciphertext
	return zero.AddAmount(p.Amount)
}

// WithdrawBundle carries a withdraw proof and the resulting source
// balance ciphertext.
type WithdrawBundle struct {
	Proof            *WithdrawProof
	NewSourceBalance *elgamal.Ciphertext
}

// GenerateWithdrawProof proves a withdrawal of amount from the owner's
// current balance. The balance must decrypt under the owner's key and
// cover the amount, otherwise ErrInsufficientBalance.
func (tp *TransferProver) GenerateWithdrawProof(sourceBalance *elgamal.Ciphertext, amount uint64, owner *elgamal.Keypair) (*WithdrawBundle, error) {
	current, ok := tp.engine.Decrypt(owner.Secret, sourceBalance)
	if !ok {
		return nil, fmt.Errorf("source balance undecryptable: %w", ErrInsufficientBalance)
	}
	if current < amount {
		return nil, fmt.Errorf("balance %d < amount %d: %w", current, amount, ErrInsufficientBalance)
	}

	newSource := sourceBalance.SubAmount(amount)
	newAmount := current - amount

	freshOpening, err := pedersen.NewOpening()
	if err != nil {
		return nil, err
	}
	fresh := pedersen.Commit(newAmount, freshOpening)

	equality, err := NewEqualityProof(owner, newSource, newAmount, freshOpening)
	if err != nil {
		return nil, fmt.Errorf("equality proof: %w", err)
	}
	rangeProof, err := tp.ranger.Prove(newAmount, fresh, freshOpening)
	if err != nil {
		return nil, fmt.Errorf("range proof: %w", err)
	}

	proof := &WithdrawProof{
		Amount:              amount,
		NewSourceCommitment: newSource.Commitment,
		RangeCommitment:     *fresh,
		Equality:            *equality,
		Range:               *rangeProof,
	}
	return &WithdrawBundle{Proof: proof, NewSourceBalance: newSource}, nil
}

// VerifyWithdrawProof checks a withdraw proof against the owner's balance
// before the withdrawal.
func VerifyWithdrawProof(oldBalance *elgamal.Ciphertext, ownerPub elgamal.PublicKey, proof *WithdrawProof) error {
	newSource := oldBalance.SubAmount(proof.Amount)

	if !proof.NewSourceCommitment.Equal(&newSource.Commitment) {
		return fmt.Errorf("source commitment mismatch: %w", ErrInvalidProof)
	}
	if err := proof.Equality.Verify(ownerPub, newSource, &proof.RangeCommitment); err != nil {
		return fmt.Errorf("balance equality: %w", err)
	}
	if err := proof.Range.Verify(&proof.RangeCommitment); err != nil {
		return fmt.Errorf("balance range: %w", err)
	}
	return nil
}
