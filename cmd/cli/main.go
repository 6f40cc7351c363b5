package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/cli"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/sdk"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leaderboard-cli",
		Short: "Leaderboard CLI",
		Long:  `Leaderboard CLI is a command line interface for the model evaluation leaderboard.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			sdkConf := sdk.Config{
				ServerURL:       cli.DefServerURL,
				TLSVerification: cli.DefTLSVerification,
			}
			s := sdk.NewSDK(sdkConf)
			cli.SetSDK(s)
		},
	}

	rootCmd.PersistentFlags().StringVarP(
		&cli.DefServerURL,
		"server-url",
		"u",
		cli.DefServerURL,
		"Leaderboard server URL",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&cli.DefTLSVerification,
		"tls-verification",
		"v",
		cli.DefTLSVerification,
		"TLS Verification",
	)

	rootCmd.AddCommand(cli.NewLeaderboardCmd())
	rootCmd.AddCommand(cli.NewQueueCmd())
	rootCmd.AddCommand(cli.NewSubmitCmd())
	rootCmd.AddCommand(cli.NewVoteCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
