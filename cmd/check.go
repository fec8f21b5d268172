package cmd

import (
	"context"
	"fmt"

	"claimbot/claimer"
	"claimbot/logger"

	"github.com/spf13/cobra"
)

// checkCmd probes the contract once and reports what a tick would do,
// without submitting anything.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the contract once and print the decision a tick would take",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := claimer.NewConfig()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
		if err != nil {
			return err
		}
		defer l.Sync() //nolint:errcheck

		ctx := context.Background()
		client, _, contract, err := buildContract(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		loop := claimer.NewLoop(cfg, contract, l)
		result := loop.Probe(ctx)

		if result.Found {
			fmt.Printf("Contract: %s\nPending (%s): %s\n", cfg.ContractAddress.Hex(), result.Source, result.Amount)
		} else {
			fmt.Printf("Contract: %s\nPending: not found (no view method answered)\n", cfg.ContractAddress.Hex())
		}
		fmt.Printf("Threshold: %s\nDecision: %s %s()\n",
			cfg.MinClaimable, claimer.Decide(result, cfg.MinClaimable, cfg.Policy), cfg.Method)
		return nil
	},
}
