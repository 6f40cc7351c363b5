package leaderboardd

import (
	"context"

	"github.com/absmach/supermq/pkg/server"
	"github.com/spf13/cobra"
)

var serviceCmd = []cobra.Command{
	{
		Use:   "start",
		Short: "Start leaderboard service",
		Long:  `Start leaderboard service.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := Config{
				LogLevel:       "info",
				DataDir:        "./data/cache",
				RemoteDir:      "./data/remote",
				ResultsPrefix:  "results",
				RequestsPrefix: "requests",
				VotesPath:      "votes/votes.jsonl",
				Server: server.Config{
					Port: "8080",
				},
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			if err := StartLeaderboard(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start leaderboard: %s", err.Error())
			}
			cancel()
		},
	},
}

func NewServiceCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "service [start]",
		Short: "Service management",
		Long:  `Start the leaderboard service with local defaults.`,
	}

	for i := range serviceCmd {
		cmd.AddCommand(&serviceCmd[i])
	}

	return &cmd
}
