package coordinator

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/proofs"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/token"
)

type recordingSink struct {
	submissions [][]token.Instruction
	calls       int
	failOn      int // 1-based call index to fail on, 0 never
}

func (s *recordingSink) Submit(_ context.Context, ins []token.Instruction, _ []token.Address) (SubmissionHandle, error) {
	s.calls++
	if s.failOn != 0 && s.calls == s.failOn {
		return "", errors.New("sink unavailable")
	}
	s.submissions = append(s.submissions, ins)
	return SubmissionHandle(fmt.Sprintf("sub-%d", s.calls)), nil
}

type fakeFunder struct{}

func (fakeFunder) FundContext(addr token.Address, space uint64) token.Instruction {
	data := binary.LittleEndian.AppendUint64([]byte{0xf0}, space)
	return token.Instruction{
		Accounts: []token.AccountMeta{{Address: addr, Writable: true}},
		Data:     data,
	}
}

type mapSource map[token.Address][]byte

func (m mapSource) AccountData(_ context.Context, a token.Address) ([]byte, error) {
	if d, ok := m[a]; ok {
		return d, nil
	}
	return nil, ErrAccountNotFound
}

func addr(b byte) token.Address {
	var a token.Address
	a[0] = b
	return a
}

type fixture struct {
	eng    *elgamal.Engine
	sink   *recordingSink
	coord  *Coordinator
	sender *elgamal.Keypair
	dest   *elgamal.Keypair
}

func newFixture(t *testing.T, source AccountSource, opts ...Option) *fixture {
	t.Helper()
	eng := elgamal.New(elgamal.WithDecryptBound(1 << 16))
	sink := &recordingSink{}
	prover := proofs.NewTransferProver(eng, nil)
	coord := New(eng, prover, sink, fakeFunder{}, source, addr(0xaa), addr(0xbb), opts...)

	sender, err := elgamal.GenerateKeypair([]byte("coord-sender"))
	require.NoError(t, err)
	dest, err := elgamal.GenerateKeypair([]byte("coord-dest"))
	require.NoError(t, err)
	return &fixture{eng: eng, sink: sink, coord: coord, sender: sender, dest: dest}
}

func (f *fixture) balance(t *testing.T, amount uint64) *elgamal.Ciphertext {
	t.Helper()
	ct, _, err := f.eng.Encrypt(f.sender.Public, amount)
	require.NoError(t, err)
	return ct
}

func transferRequest(f *fixture, balance *elgamal.Ciphertext, amount uint64, cleanup bool) TransferRequest {
	return TransferRequest{
		Sender:        f.sender,
		SenderAddress: addr(1),
		SourceAccount: addr(2),
		SourceBalance: balance,
		DestAccount:   addr(3),
		DestPubkey:    f.dest.Public,
		Amount:        amount,
		AutoCleanup:   cleanup,
		RentRecipient: addr(4),
	}
}

func TestTransferLifecycleWithCleanup(t *testing.T) {
	f := newFixture(t, mapSource{})
	balance := f.balance(t, 1000)

	res, err := f.coord.Transfer(context.Background(), transferRequest(f, balance, 250, true))
	require.NoError(t, err)
	require.Equal(t, StateClosed, res.Context.State())
	require.Len(t, res.Handles, 3)

	// init+verify, consume, close
	require.Len(t, f.sink.submissions, 3)
	require.Len(t, f.sink.submissions[0], 2)
	require.Equal(t, byte(token.ExtensionInstruction), f.sink.submissions[1][0].Data[0])
	require.Equal(t, byte(token.SubOpTransfer), f.sink.submissions[1][0].Data[1])
	require.Equal(t, token.EncodeCloseContext(), f.sink.submissions[2][0].Data)

	remaining, ok := f.eng.Decrypt(f.sender.Secret, res.NewSourceBalance)
	require.True(t, ok)
	require.Equal(t, uint64(750), remaining)

	received, ok := f.eng.Decrypt(f.dest.Secret, res.DestCiphertext)
	require.True(t, ok)
	require.Equal(t, uint64(250), received)
}

func TestTransferWithoutCleanupAbandonsContext(t *testing.T) {
	f := newFixture(t, mapSource{})
	balance := f.balance(t, 1000)

	res, err := f.coord.Transfer(context.Background(), transferRequest(f, balance, 100, false))
	require.NoError(t, err)
	require.Equal(t, StateAbandoned, res.Context.State())

	ops := f.coord.BuildCleanupOperations([]*ProofContext{res.Context}, addr(1), addr(4))
	require.Len(t, ops, 1)
	require.Equal(t, token.EncodeCloseContext(), ops[0].Data)
	require.Equal(t, res.Context.Address, ops[0].Accounts[0].Address)

	remaining, err := f.coord.CloseAbandoned(context.Background(), []*ProofContext{res.Context}, addr(1), addr(4))
	require.NoError(t, err)
	require.Empty(t, remaining)
	require.Equal(t, StateClosed, res.Context.State())
}

func TestTransferInsufficientBalanceGeneratesNothing(t *testing.T) {
	f := newFixture(t, mapSource{})
	balance := f.balance(t, 10)

	_, err := f.coord.Transfer(context.Background(), transferRequest(f, balance, 50, true))
	require.ErrorIs(t, err, proofs.ErrInsufficientBalance)
	require.Zero(t, f.sink.calls)
}

func TestWithdrawLifecycle(t *testing.T) {
	f := newFixture(t, mapSource{}, WithDecimals(6))
	balance := f.balance(t, 1000)

	res, err := f.coord.Withdraw(context.Background(), WithdrawRequest{
		Owner:         f.sender,
		OwnerAddress:  addr(1),
		SourceAccount: addr(2),
		SourceBalance: balance,
		Amount:        400,
		AutoCleanup:   true,
		RentRecipient: addr(4),
	})
	require.NoError(t, err)
	require.Equal(t, StateClosed, res.Context.State())

	remaining, ok := f.eng.Decrypt(f.sender.Secret, res.NewSourceBalance)
	require.True(t, ok)
	require.Equal(t, uint64(600), remaining)

	withdraw := f.sink.submissions[1][0].Data
	require.Equal(t, byte(token.SubOpWithdraw), withdraw[1])
	require.Equal(t, uint64(400), binary.LittleEndian.Uint64(withdraw[2:]))
	require.Equal(t, byte(6), withdraw[10])
}

func TestBatchPacking(t *testing.T) {
	f := newFixture(t, mapSource{}, WithComputeCeiling(300), WithProofCost(100))
	balance := f.balance(t, 1000)

	req := BatchRequest{
		Sender:        f.sender,
		SenderAddress: addr(1),
		SourceAccount: addr(2),
		SourceBalance: balance,
		AutoCleanup:   true,
		RentRecipient: addr(4),
	}
	var total uint64
	for i := 0; i < 7; i++ {
		req.Recipients = append(req.Recipients, Recipient{
			Account: addr(byte(10 + i)),
			Pubkey:  f.dest.Public,
			Amount:  uint64(10 + i),
		})
		total += uint64(10 + i)
	}

	res, err := f.coord.BatchTransfer(context.Background(), req)
	require.NoError(t, err)
	// ceil(7*100 / 300) sub-batches of at most 3.
	require.Equal(t, 3, res.SubBatches)
	require.Len(t, res.Transfers, 7)
	require.Empty(t, res.OpenContexts)

	remaining, ok := f.eng.Decrypt(f.sender.Secret, res.NewSourceBalance)
	require.True(t, ok)
	require.Equal(t, 1000-total, remaining)
}

func TestBatchReportsOpenContexts(t *testing.T) {
	f := newFixture(t, mapSource{})
	balance := f.balance(t, 1000)

	req := BatchRequest{
		Sender:        f.sender,
		SenderAddress: addr(1),
		SourceAccount: addr(2),
		SourceBalance: balance,
		AutoCleanup:   false,
		RentRecipient: addr(4),
	}
	for i := 0; i < 3; i++ {
		req.Recipients = append(req.Recipients, Recipient{
			Account: addr(byte(10 + i)),
			Pubkey:  f.dest.Public,
			Amount:  5,
		})
	}

	res, err := f.coord.BatchTransfer(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.OpenContexts, 3)
	for _, pc := range res.OpenContexts {
		require.Equal(t, StateAbandoned, pc.State())
	}
}

func TestBatchPartialFailureStillReportsContexts(t *testing.T) {
	f := newFixture(t, mapSource{})
	// Fail the second recipient's consume submission: calls are
	// init+verify (1), consume (2), init+verify (3), consume (4).
	f.sink.failOn = 4
	balance := f.balance(t, 1000)

	req := BatchRequest{
		Sender:        f.sender,
		SenderAddress: addr(1),
		SourceAccount: addr(2),
		SourceBalance: balance,
		AutoCleanup:   false,
		RentRecipient: addr(4),
	}
	for i := 0; i < 3; i++ {
		req.Recipients = append(req.Recipients, Recipient{
			Account: addr(byte(10 + i)),
			Pubkey:  f.dest.Public,
			Amount:  5,
		})
	}

	res, err := f.coord.BatchTransfer(context.Background(), req)
	require.Error(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Transfers, 1)
	// The first recipient's context plus the second recipient's, which
	// was funded before its consume failed.
	require.Len(t, res.OpenContexts, 2)
	for _, pc := range res.OpenContexts {
		require.Equal(t, StateAbandoned, pc.State())
	}
}

func TestTransferConsumeFailureAbandonsContext(t *testing.T) {
	f := newFixture(t, mapSource{})
	// init+verify succeeds (1), consume fails (2).
	f.sink.failOn = 2
	balance := f.balance(t, 1000)

	res, err := f.coord.Transfer(context.Background(), transferRequest(f, balance, 100, true))
	require.Error(t, err)
	require.NotNil(t, res)
	require.NotNil(t, res.Context)
	require.Equal(t, StateAbandoned, res.Context.State())
	require.True(t, res.Context.Open())
	require.Len(t, res.Handles, 1)

	remaining, cerr := f.coord.CloseAbandoned(context.Background(), []*ProofContext{res.Context}, addr(1), addr(4))
	require.NoError(t, cerr)
	require.Empty(t, remaining)
	require.Equal(t, StateClosed, res.Context.State())
}

func TestBatchConsumeFailureReportsFundedContext(t *testing.T) {
	f := newFixture(t, mapSource{})
	// The very first consume fails, so no transfer completes but one
	// context already holds rent.
	f.sink.failOn = 2
	balance := f.balance(t, 1000)

	res, err := f.coord.BatchTransfer(context.Background(), BatchRequest{
		Sender:        f.sender,
		SenderAddress: addr(1),
		SourceAccount: addr(2),
		SourceBalance: balance,
		Recipients:    []Recipient{{Account: addr(10), Pubkey: f.dest.Public, Amount: 5}},
	})
	require.Error(t, err)
	require.NotNil(t, res)
	require.Empty(t, res.Transfers)
	require.Len(t, res.OpenContexts, 1)
	require.Equal(t, StateAbandoned, res.OpenContexts[0].State())
}

func TestCeilingBelowSingleProof(t *testing.T) {
	f := newFixture(t, mapSource{}, WithComputeCeiling(100), WithProofCost(200))
	balance := f.balance(t, 100)

	_, err := f.coord.BatchTransfer(context.Background(), BatchRequest{
		Sender:        f.sender,
		SenderAddress: addr(1),
		SourceAccount: addr(2),
		SourceBalance: balance,
		Recipients:    []Recipient{{Account: addr(10), Pubkey: f.dest.Public, Amount: 1}},
	})
	require.ErrorIs(t, err, ErrResourceBudgetExceeded)
}

func TestContextAddressDerivation(t *testing.T) {
	kp, err := elgamal.GenerateKeypair([]byte("ctx-addr"))
	require.NoError(t, err)

	a1 := deriveContextAddress(kp.Public, 1)
	a2 := deriveContextAddress(kp.Public, 1)
	a3 := deriveContextAddress(kp.Public, 2)
	require.Equal(t, a1, a2)
	require.NotEqual(t, a1, a3)

	other, err := elgamal.GenerateKeypair([]byte("ctx-addr-other"))
	require.NoError(t, err)
	require.NotEqual(t, a1, deriveContextAddress(other.Public, 1))
}

func TestIllegalTransitionRejected(t *testing.T) {
	pc := &ProofContext{state: StateDraft}
	require.ErrorIs(t, pc.Transition(StateConsumed), ErrIllegalTransition)
	require.NoError(t, pc.Transition(StateProofGenerated))
	require.ErrorIs(t, pc.Transition(StateClosed), ErrIllegalTransition)
}

func TestFetchConfidentialAccount(t *testing.T) {
	kp, err := elgamal.GenerateKeypair([]byte("fetch-owner"))
	require.NoError(t, err)
	eng := elgamal.New(elgamal.WithDecryptBound(1 << 16))
	pending, _, err := eng.Encrypt(kp.Public, 1)
	require.NoError(t, err)
	available, _, err := eng.Encrypt(kp.Public, 2)
	require.NoError(t, err)

	acc := &token.ConfidentialAccount{
		ElGamalPubkey:    kp.Public,
		PendingBalance:   *pending,
		AvailableBalance: *available,
		TransfersEnabled: true,
	}
	source := mapSource{addr(7): acc.AppendTLV(nil)}

	f := newFixture(t, source)
	got, err := f.coord.FetchConfidentialAccount(context.Background(), addr(7))
	require.NoError(t, err)
	require.True(t, got.ElGamalPubkey.Equal(kp.Public))
	require.True(t, got.TransfersEnabled)

	_, err = f.coord.FetchConfidentialAccount(context.Background(), addr(8))
	require.ErrorIs(t, err, ErrAccountNotFound)
}
