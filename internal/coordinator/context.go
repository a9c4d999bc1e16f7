// context.go - Proof context lifecycle.
//
// Every elementary operation drives one ephemeral proof context through
// Draft -> ProofGenerated -> ContextInitialized -> ProofSubmitted ->
// Consumed -> (Closed | Abandoned). Transitions are checked; an illegal
// jump by a caller is a bug, not a recoverable condition, but it is
// reported as an error rather than a panic so batch processing can
// surface it.

package coordinator

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/token"
)

// State is a proof context lifecycle stage.
type State uint8

const (
	StateDraft State = iota
	StateProofGenerated
	StateContextInitialized
	StateProofSubmitted
	StateConsumed
	StateClosed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateProofGenerated:
		return "proof-generated"
	case StateContextInitialized:
		return "context-initialized"
	case StateProofSubmitted:
		return "proof-submitted"
	case StateConsumed:
		return "consumed"
	case StateClosed:
		return "closed"
	case StateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// A context can be abandoned from any state after its account was
// funded on-chain: a failed submission mid-flight must still leave it
// reachable for cleanup.
var legalTransitions = map[State][]State{
	StateDraft:              {StateProofGenerated},
	StateProofGenerated:     {StateContextInitialized},
	StateContextInitialized: {StateProofSubmitted, StateAbandoned},
	StateProofSubmitted:     {StateConsumed, StateAbandoned},
	StateConsumed:           {StateClosed, StateAbandoned},
	StateAbandoned:          {StateClosed},
}

// ProofContext tracks one ephemeral proof context account and its
// lifecycle state.
type ProofContext struct {
	Address token.Address
	Sender  elgamal.PublicKey
	Nonce   uint64

	state State
}

// State returns the current lifecycle stage.
func (pc *ProofContext) State() State {
	return pc.state
}

// Open reports whether the context account was funded on-chain and not
// yet closed, i.e. it still holds rent.
func (pc *ProofContext) Open() bool {
	switch pc.state {
	case StateContextInitialized, StateProofSubmitted, StateConsumed, StateAbandoned:
		return true
	}
	return false
}

// Transition advances the context to the next stage, rejecting any edge
// the lifecycle does not allow.
func (pc *ProofContext) Transition(to State) error {
	for _, next := range legalTransitions[pc.state] {
		if next == to {
			pc.state = to
			return nil
		}
	}
	return fmt.Errorf("%s -> %s: %w", pc.state, to, ErrIllegalTransition)
}

const contextAddressDomain = "proof-context"

// deriveContextAddress computes the deterministic context account
// address blake2b-256(domain || senderPubkey || nonce_le).
func deriveContextAddress(sender elgamal.PublicKey, nonce uint64) token.Address {
	pk := sender.Bytes()
	var nb [8]byte
	binary.LittleEndian.PutUint64(nb[:], nonce)

	buf := make([]byte, 0, len(contextAddressDomain)+len(pk)+len(nb))
	buf = append(buf, contextAddressDomain...)
	buf = append(buf, pk[:]...)
	buf = append(buf, nb[:]...)
	return token.Address(blake2b.Sum256(buf))
}

// newProofContext allocates a Draft context for the sender under the
// coordinator's monotonic nonce.
func (c *Coordinator) newProofContext(sender elgamal.PublicKey) *ProofContext {
	nonce := c.nonce.Add(1)
	return &ProofContext{
		Address: deriveContextAddress(sender, nonce),
		Sender:  sender,
		Nonce:   nonce,
		state:   StateDraft,
	}
}
