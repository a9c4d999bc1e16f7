// confidentiald runs an end-to-end confidential transfer flow against
// in-memory collaborators: account configuration, deposit, a batched
// confidential transfer, a withdrawal, context cleanup, and a telemetry
// report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/accel"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/coordinator"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/proofs"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/token"
)

// memorySink accepts operation sets and acknowledges them immediately.
type memorySink struct {
	log   zerolog.Logger
	count int
}

func (s *memorySink) Submit(_ context.Context, ins []token.Instruction, signers []token.Address) (coordinator.SubmissionHandle, error) {
	s.count++
	s.log.Debug().
		Int("instructions", len(ins)).
		Int("signers", len(signers)).
		Msg("operation set accepted")
	return coordinator.SubmissionHandle(fmt.Sprintf("mem-%d", s.count)), nil
}

// memoryFunder builds a plain create-account operation for a context.
type memoryFunder struct{}

func (memoryFunder) FundContext(addr token.Address, space uint64) token.Instruction {
	return token.Instruction{
		Accounts: []token.AccountMeta{{Address: addr, Writable: true}},
		Data:     []byte{0x00, byte(space), byte(space >> 8)},
	}
}

// memorySource serves account blobs from a map.
type memorySource map[token.Address][]byte

func (m memorySource) AccountData(_ context.Context, addr token.Address) ([]byte, error) {
	if data, ok := m[addr]; ok {
		return data, nil
	}
	return nil, coordinator.ErrAccountNotFound
}

func addressFromSeed(seed string) token.Address {
	var a token.Address
	copy(a[:], seed)
	return a
}

func accelMode(name string) accel.Mode {
	switch name {
	case "reference":
		return accel.ModeForceReference
	case "accelerated":
		return accel.ModeForceAccelerated
	default:
		return accel.ModeAuto
	}
}

func run(cfg *Config, log zerolog.Logger) error {
	ctx := context.Background()
	start := time.Now()

	engine := elgamal.New(elgamal.WithDecryptBound(cfg.DecryptBound))
	shim := accel.NewShim(engine,
		accel.WithMode(accelMode(cfg.AccelMode)),
		accel.WithPreferredBatchSize(cfg.PreferredBatchSize),
		accel.WithTelemetryWindow(cfg.TelemetryWindow),
		accel.WithShimLogger(log),
	)
	log.Info().Stringer("backend", shim.Choice()).Msg("acceleration probe complete")

	sender, err := elgamal.GenerateKeypair(nil)
	if err != nil {
		return err
	}
	recipients := make([]*elgamal.Keypair, cfg.NumRecipients)
	for i := range recipients {
		recipients[i], err = elgamal.GenerateKeypair(nil)
		if err != nil {
			return err
		}
	}

	sink := &memorySink{log: log}
	source := memorySource{}
	prover := proofs.NewTransferProver(engine, nil)
	coord := coordinator.New(engine, prover, sink, memoryFunder{}, source,
		addressFromSeed("token-program"), addressFromSeed("proof-program"),
		coordinator.WithComputeCeiling(cfg.ComputeCeiling),
		coordinator.WithProofCost(cfg.ProofCost),
		coordinator.WithDecimals(cfg.TokenDecimals),
		coordinator.WithLogger(log),
	)

	senderAddr := addressFromSeed("demo-sender")
	sourceAccount := addressFromSeed("demo-source-account")
	rentRecipient := addressFromSeed("demo-rent-recipient")

	// Configure the source account and deposit the opening balance, then
	// publish its extension state so it can be fetched back.
	configure := coord.BuildConfigureAccount(sourceAccount, senderAddr, sender.Public, 65536)
	deposit := coord.BuildDeposit(sourceAccount, senderAddr, cfg.InitialBalance)
	if _, err := sink.Submit(ctx, []token.Instruction{configure, deposit}, []token.Address{senderAddr}); err != nil {
		return err
	}

	balance, _, err := shim.Encrypt(sender.Public, cfg.InitialBalance)
	if err != nil {
		return err
	}
	state := &token.ConfidentialAccount{
		ElGamalPubkey:                sender.Public,
		AvailableBalance:             *balance,
		PendingBalance:               *balance.SubAmount(cfg.InitialBalance),
		TransfersEnabled:             true,
		AllowConfidentialCredits:     true,
		MaximumPendingCreditCounter:  65536,
		PendingCreditCounter:         1,
		ExpectedPendingCreditCounter: 1,
		ActualPendingCreditCounter:   1,
	}
	source[sourceAccount] = state.AppendTLV(nil)

	fetched, err := coord.FetchConfidentialAccount(ctx, sourceAccount)
	if err != nil {
		return err
	}
	available, ok := shim.Decrypt(sender.Secret, &fetched.AvailableBalance)
	if !ok {
		return fmt.Errorf("available balance undecryptable")
	}
	log.Info().Uint64("available", available).Msg("source account loaded")

	// Batched confidential transfer across every recipient.
	batch := coordinator.BatchRequest{
		Sender:        sender,
		SenderAddress: senderAddr,
		SourceAccount: sourceAccount,
		SourceBalance: &fetched.AvailableBalance,
		AutoCleanup:   cfg.AutoCleanup,
		RentRecipient: rentRecipient,
	}
	var total uint64
	for i, rcpt := range recipients {
		amount := uint64(100 * (i + 1))
		total += amount
		batch.Recipients = append(batch.Recipients, coordinator.Recipient{
			Account: addressFromSeed(fmt.Sprintf("demo-recipient-%d", i)),
			Pubkey:  rcpt.Public,
			Amount:  amount,
		})
	}

	result, err := coord.BatchTransfer(ctx, batch)
	if result != nil {
		log.Info().
			Int("sub_batches", result.SubBatches).
			Int("transfers", len(result.Transfers)).
			Int("open_contexts", len(result.OpenContexts)).
			Msg("batch transfer finished")
	}
	if err != nil {
		return err
	}

	remaining, ok := shim.Decrypt(sender.Secret, result.NewSourceBalance)
	if !ok {
		return fmt.Errorf("remaining balance undecryptable")
	}
	log.Info().
		Uint64("sent", total).
		Uint64("remaining", remaining).
		Msg("balances reconciled")

	// Withdraw half of what is left.
	withdrawal, err := coord.Withdraw(ctx, coordinator.WithdrawRequest{
		Owner:         sender,
		OwnerAddress:  senderAddr,
		SourceAccount: sourceAccount,
		SourceBalance: result.NewSourceBalance,
		Amount:        remaining / 2,
		AutoCleanup:   cfg.AutoCleanup,
		RentRecipient: rentRecipient,
	})
	if err != nil {
		return err
	}
	log.Info().
		Uint64("amount", remaining/2).
		Str("context_state", withdrawal.Context.State().String()).
		Msg("withdrawal complete")

	// Reconcile any contexts the batch left open.
	if len(result.OpenContexts) > 0 {
		leaked, err := coord.CloseAbandoned(ctx, result.OpenContexts, senderAddr, rentRecipient)
		if err != nil {
			return err
		}
		log.Info().
			Int("closed", len(result.OpenContexts)-len(leaked)).
			Int("leaked", len(leaked)).
			Msg("context cleanup finished")
	}

	for _, st := range shim.Telemetry().Report() {
		log.Info().
			Str("op", string(st.Op)).
			Int("count", st.Count).
			Int("accelerated", st.AcceleratedCount).
			Dur("avg_reference", st.AvgReference).
			Dur("avg_accelerated", st.AvgAccelerated).
			Float64("speedup", st.Speedup).
			Msg("telemetry")
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("demo complete")
	return nil
}

func main() {
	configPath := flag.String("config", "confidentiald.json", "path to config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: invalid log_level %q\n", cfg.LogLevel)
		os.Exit(1)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("demo failed")
	}
}
