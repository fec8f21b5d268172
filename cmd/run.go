package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"claimbot/chaineth"
	"claimbot/claimer"
	"claimbot/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the claim loop until terminated",
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

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, signer, contract, err := buildContract(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		l.Info("connected",
			zap.String("chainId", client.ChainID().String()),
			zap.String("caller", signer.Address().Hex()))

		claimer.NewLoop(cfg, contract, l).Run(ctx)
		return nil
	},
}

func buildContract(ctx context.Context, cfg *claimer.Config) (*chaineth.Client, *chaineth.Signer, *chaineth.Contract, error) {
	client, err := chaineth.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, nil, err
	}

	signer, err := chaineth.NewSigner(cfg.PrivateKey)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}

	contract, err := chaineth.NewContract(client, signer, cfg.ContractAddress)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	return client, signer, contract, nil
}
