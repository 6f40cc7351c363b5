package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboardd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leaderboardd",
		Short: "Leaderboard Daemon",
		Long:  `Leaderboard Daemon manages the lifecycle of the leaderboard service.`,
	}

	serviceCmd := leaderboardd.NewServiceCmd()

	rootCmd.AddCommand(serviceCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
