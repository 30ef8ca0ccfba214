package cmd

import (
	"github.com/vimanuelt/p9sk1/cli"
)

// versionCmd represents the version command
var versionCmd = cli.NewVersionCommand("p9auth")

func init() {
	RootCmd.AddCommand(versionCmd)
}
