package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for notary
var RootCmd = &cobra.Command{
	Use:              "notary",
	Short:            "Record house sales on a notary ledger",
	TraverseChildren: true,
}
