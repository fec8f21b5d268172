package cmd

import (
	"os"
	"strings"

	"claimbot/claimer"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "claimbot",
	Short: "Periodically claims pending balances from a smart contract",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	viper.SetEnvPrefix(claimer.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("rpc-url", "", `Chain RPC endpoint, e.g. "http://<hostname>:8545"`)
	rootCmd.PersistentFlags().String("private-key", "", "Hex private key of the gas-paying account")
	rootCmd.PersistentFlags().String("contract-address", "", "Address of the claim contract")
	rootCmd.PersistentFlags().String("method", "", `Mutator to invoke: "claim" (default), "release" or "withdraw"`)
	rootCmd.PersistentFlags().String("interval-minutes", "", "Minutes between ticks (default 5, minimum 1)")
	rootCmd.PersistentFlags().String("min-claimable", "", "Skip when the readable amount is at or below this many wei (default 0)")
	rootCmd.PersistentFlags().String("policy", "", `What to do when no view method answers: "optimistic" (default) or "conservative"`)
	rootCmd.PersistentFlags().String("confirm-timeout-minutes", "", "Minutes to wait for a receipt before giving up on the tick (default 10)")
	rootCmd.PersistentFlags().Bool("debug", false, `"true" or "false"`)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		viper.BindPFlag(f.Name, f) //nolint:errcheck
		viper.BindEnv(f.Name)      //nolint:errcheck
	})
}
