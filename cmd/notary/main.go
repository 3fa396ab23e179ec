package main

import (
	"os"

	cmd "github.com/mosaicnetworks/notary/cmd/notary/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.VersionCmd,
		cmd.NewKeygenCmd(),
		cmd.NewSaleCmd(),
		cmd.NewTPCmd(),
		cmd.NewDevnetCmd(),
		cmd.NewListenCmd())

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
