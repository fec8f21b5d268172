package claimer

import (
	"context"
	"math/big"
	"time"

	"claimbot/chaineth"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Backend is the chain surface one tick needs. chaineth.Contract implements
// it; tests substitute a fake.
type Backend interface {
	Claimable(ctx context.Context) (*big.Int, error)
	Releasable(ctx context.Context) (*big.Int, error)
	Submit(ctx context.Context, method string) (common.Hash, error)
	WaitConfirmed(ctx context.Context, txHash common.Hash) (*chaineth.Confirmation, error)
}

type Decision string

const (
	DecisionSkip    Decision = "skip"
	DecisionAttempt Decision = "attempt"
)

// Decide applies the threshold to a probe result. Skip iff the amount is
// known and at or below the threshold, or unknown under the conservative
// policy.
func Decide(result ProbeResult, threshold *big.Int, policy Policy) Decision {
	if !result.Found {
		if policy == PolicyConservative {
			return DecisionSkip
		}
		return DecisionAttempt
	}
	if result.Amount.Cmp(threshold) <= 0 {
		return DecisionSkip
	}
	return DecisionAttempt
}

// Loop drives sequential, non-overlapping ticks against one contract.
type Loop struct {
	cfg     *Config
	backend Backend
	log     *zap.Logger
}

func NewLoop(cfg *Config, backend Backend, log *zap.Logger) *Loop {
	return &Loop{
		cfg:     cfg,
		backend: backend,
		log: log.With(
			zap.String("contract", cfg.ContractAddress.Hex()),
			zap.String("method", cfg.Method),
		),
	}
}

// Probe reads claimable() then releasable(); the first successful read wins.
// Both failing is the expected shape for contracts without either view.
func (l *Loop) Probe(ctx context.Context) ProbeResult {
	amount, err := l.backend.Claimable(ctx)
	if err == nil {
		return FoundAmount("claimable", amount)
	}
	l.log.Debug("claimable() unavailable", zap.Error(err))

	amount, err = l.backend.Releasable(ctx)
	if err == nil {
		return FoundAmount("releasable", amount)
	}
	l.log.Debug("releasable() unavailable", zap.Error(err))

	return Unavailable()
}

// Tick runs one probe → decide → submit → confirm cycle. Submission and
// confirmation failures are logged and contained; the caller's schedule is
// never interrupted.
func (l *Loop) Tick(ctx context.Context) {
	result := l.Probe(ctx)
	if result.Found {
		l.log.Info("pending balance read",
			zap.String("amount", result.Amount.String()),
			zap.String("source", result.Source))
	} else {
		l.log.Info("pending balance not found, proceeding by policy",
			zap.String("policy", string(l.cfg.Policy)))
	}

	decision := Decide(result, l.cfg.MinClaimable, l.cfg.Policy)
	if decision == DecisionSkip {
		if result.Found {
			l.log.Info("skipping claim, amount at or below threshold",
				zap.String("amount", result.Amount.String()),
				zap.String("threshold", l.cfg.MinClaimable.String()))
		} else {
			l.log.Info("skipping claim, amount unknown and policy is conservative")
		}
		return
	}

	txHash, err := l.backend.Submit(ctx, l.cfg.Method)
	if err != nil {
		l.log.Error("claim submission failed",
			zap.String("reason", chaineth.HumanizeRPCError(err)))
		return
	}
	l.log.Info("claim submitted", zap.String("tx", txHash.Hex()))

	confirmCtx, cancel := context.WithTimeout(ctx, l.cfg.ConfirmTimeout)
	defer cancel()

	confirmation, err := l.backend.WaitConfirmed(confirmCtx, txHash)
	if err != nil {
		l.log.Error("confirmation wait failed",
			zap.String("tx", txHash.Hex()),
			zap.String("reason", chaineth.HumanizeRPCError(err)))
		return
	}

	if confirmation.Reverted {
		l.log.Error("claim reverted",
			zap.String("tx", txHash.Hex()),
			zap.Uint64("block", confirmation.BlockNumber))
		return
	}

	l.log.Info("claim confirmed",
		zap.String("tx", txHash.Hex()),
		zap.Uint64("block", confirmation.BlockNumber),
		zap.Uint64("gasUsed", confirmation.GasUsed))
}

// Run ticks immediately, then re-arms the interval timer only after each
// tick fully completes, so ticks never overlap. A tick that outlives the
// interval delays the next one instead of racing it.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info("starting claim loop", zap.Duration("interval", l.cfg.Interval))

	for {
		l.Tick(ctx)

		timer := time.NewTimer(l.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.log.Info("claim loop stopped")
			return
		case <-timer.C:
		}
	}
}
