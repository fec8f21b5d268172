package claimer

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"claimbot/chaineth"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBackend struct {
	claimable     *big.Int
	claimableErr  error
	releasable    *big.Int
	releasableErr error

	submitErrs   []error
	submits      []string
	confirmation *chaineth.Confirmation
	confirmErr   error
	confirmCalls int
}

func (f *fakeBackend) Claimable(ctx context.Context) (*big.Int, error) {
	if f.claimableErr != nil {
		return nil, f.claimableErr
	}
	return f.claimable, nil
}

func (f *fakeBackend) Releasable(ctx context.Context) (*big.Int, error) {
	if f.releasableErr != nil {
		return nil, f.releasableErr
	}
	return f.releasable, nil
}

func (f *fakeBackend) Submit(ctx context.Context, method string) (common.Hash, error) {
	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return common.Hash{}, err
		}
	}
	f.submits = append(f.submits, method)
	return common.HexToHash("0xabc123"), nil
}

func (f *fakeBackend) WaitConfirmed(ctx context.Context, txHash common.Hash) (*chaineth.Confirmation, error) {
	f.confirmCalls++
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	if f.confirmation != nil {
		return f.confirmation, nil
	}
	return &chaineth.Confirmation{TxHash: txHash, BlockNumber: 12345, GasUsed: 21000}, nil
}

func testConfig() *Config {
	return &Config{
		RPCURL:          "http://127.0.0.1:8545",
		PrivateKey:      testPrivateKey,
		ContractAddress: common.HexToAddress(testContract),
		Method:          MethodClaim,
		Interval:        time.Minute,
		MinClaimable:    big.NewInt(0),
		Policy:          PolicyOptimistic,
		ConfirmTimeout:  time.Minute,
	}
}

func newTestLoop(cfg *Config, backend Backend) (*Loop, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewLoop(cfg, backend, zap.New(core)), logs
}

func Test_Decide(t *testing.T) {
	tests := []struct {
		name      string
		result    ProbeResult
		threshold *big.Int
		policy    Policy
		want      Decision
	}{
		{"amount above threshold attempts", FoundAmount("claimable", big.NewInt(5000)), big.NewInt(1000), PolicyOptimistic, DecisionAttempt},
		{"amount below threshold skips", FoundAmount("claimable", big.NewInt(500)), big.NewInt(1000), PolicyOptimistic, DecisionSkip},
		{"amount equal to threshold skips", FoundAmount("claimable", big.NewInt(1000)), big.NewInt(1000), PolicyOptimistic, DecisionSkip},
		{"zero amount with zero threshold skips", FoundAmount("claimable", big.NewInt(0)), big.NewInt(0), PolicyOptimistic, DecisionSkip},
		{"unknown amount attempts optimistically", Unavailable(), big.NewInt(1000), PolicyOptimistic, DecisionAttempt},
		{"unknown amount skips conservatively", Unavailable(), big.NewInt(1000), PolicyConservative, DecisionSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.result, tt.threshold, tt.policy))
		})
	}
}

func Test_Probe(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers claimable over releasable", func(t *testing.T) {
		backend := &fakeBackend{claimable: big.NewInt(7), releasable: big.NewInt(9)}
		loop, _ := newTestLoop(testConfig(), backend)

		result := loop.Probe(ctx)
		require.True(t, result.Found)
		assert.Equal(t, "claimable", result.Source)
		assert.Equal(t, "7", result.Amount.String())
	})

	t.Run("falls back to releasable", func(t *testing.T) {
		backend := &fakeBackend{
			claimableErr: errors.New("execution reverted"),
			releasable:   big.NewInt(9),
		}
		loop, _ := newTestLoop(testConfig(), backend)

		result := loop.Probe(ctx)
		require.True(t, result.Found)
		assert.Equal(t, "releasable", result.Source)
		assert.Equal(t, "9", result.Amount.String())
	})

	t.Run("both views failing yields unavailable, not an error", func(t *testing.T) {
		backend := &fakeBackend{
			claimableErr:  errors.New("execution reverted"),
			releasableErr: errors.New("execution reverted"),
		}
		loop, logs := newTestLoop(testConfig(), backend)

		result := loop.Probe(ctx)
		assert.False(t, result.Found)
		assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
	})
}

func Test_Tick(t *testing.T) {
	ctx := context.Background()

	t.Run("skips below threshold without submitting", func(t *testing.T) {
		cfg := testConfig()
		cfg.MinClaimable = big.NewInt(1000)
		backend := &fakeBackend{claimable: big.NewInt(500)}
		loop, logs := newTestLoop(cfg, backend)

		loop.Tick(ctx)

		assert.Empty(t, backend.submits)
		assert.Zero(t, backend.confirmCalls)
		assert.Equal(t, 1, logs.FilterMessageSnippet("skipping").Len())
	})

	t.Run("submits exactly once above threshold and logs the block", func(t *testing.T) {
		cfg := testConfig()
		cfg.MinClaimable = big.NewInt(1000)
		backend := &fakeBackend{claimable: big.NewInt(5000)}
		loop, logs := newTestLoop(cfg, backend)

		loop.Tick(ctx)

		require.Equal(t, []string{MethodClaim}, backend.submits)
		assert.Equal(t, 1, backend.confirmCalls)

		confirmed := logs.FilterMessageSnippet("claim confirmed")
		require.Equal(t, 1, confirmed.Len())
		assert.Equal(t, uint64(12345), confirmed.All()[0].ContextMap()["block"])
	})

	t.Run("submits the configured method", func(t *testing.T) {
		cfg := testConfig()
		cfg.Method = MethodWithdraw
		backend := &fakeBackend{claimable: big.NewInt(5000)}
		loop, _ := newTestLoop(cfg, backend)

		loop.Tick(ctx)

		assert.Equal(t, []string{MethodWithdraw}, backend.submits)
	})

	t.Run("unknown amount submits under the optimistic policy", func(t *testing.T) {
		backend := &fakeBackend{
			claimableErr:  errors.New("execution reverted"),
			releasableErr: errors.New("execution reverted"),
		}
		loop, _ := newTestLoop(testConfig(), backend)

		loop.Tick(ctx)

		assert.Len(t, backend.submits, 1)
	})

	t.Run("unknown amount skips under the conservative policy", func(t *testing.T) {
		cfg := testConfig()
		cfg.Policy = PolicyConservative
		backend := &fakeBackend{
			claimableErr:  errors.New("execution reverted"),
			releasableErr: errors.New("execution reverted"),
		}
		loop, _ := newTestLoop(cfg, backend)

		loop.Tick(ctx)

		assert.Empty(t, backend.submits)
	})

	t.Run("a failed submission does not stop the next tick", func(t *testing.T) {
		backend := &fakeBackend{
			claimable:  big.NewInt(5000),
			submitErrs: []error{errors.New("insufficient funds for gas * price + value")},
		}
		loop, logs := newTestLoop(testConfig(), backend)

		loop.Tick(ctx)
		loop.Tick(ctx)

		assert.Equal(t, []string{MethodClaim}, backend.submits)
		assert.Equal(t, 1, logs.FilterMessageSnippet("submission failed").Len())
		assert.Equal(t, 1, logs.FilterMessageSnippet("claim confirmed").Len())
	})

	t.Run("a failed confirmation wait is contained", func(t *testing.T) {
		backend := &fakeBackend{
			claimable:  big.NewInt(5000),
			confirmErr: context.DeadlineExceeded,
		}
		loop, logs := newTestLoop(testConfig(), backend)

		loop.Tick(ctx)

		assert.Equal(t, 1, logs.FilterMessageSnippet("confirmation wait failed").Len())
	})

	t.Run("a reverted claim is reported as a failed tick", func(t *testing.T) {
		backend := &fakeBackend{
			claimable:    big.NewInt(5000),
			confirmation: &chaineth.Confirmation{BlockNumber: 99, Reverted: true},
		}
		loop, logs := newTestLoop(testConfig(), backend)

		loop.Tick(ctx)

		reverted := logs.FilterMessageSnippet("claim reverted")
		require.Equal(t, 1, reverted.Len())
		assert.Equal(t, uint64(99), reverted.All()[0].ContextMap()["block"])
	})
}

func Test_Run(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		cfg := testConfig()
		cfg.MinClaimable = big.NewInt(1000)
		backend := &fakeBackend{claimable: big.NewInt(1)}
		loop, logs := newTestLoop(cfg, backend)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			loop.Run(ctx)
			close(done)
		}()

		// Let the immediate first tick happen, then cancel during the wait.
		assert.Eventually(t, func() bool {
			return logs.FilterMessageSnippet("skipping").Len() >= 1
		}, 2*time.Second, 10*time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not stop after cancellation")
		}
		assert.Empty(t, backend.submits)
	})
}
