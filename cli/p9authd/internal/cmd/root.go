package cmd

import (
	"github.com/vimanuelt/p9sk1/cli"
)

// RootCmd represents the base "p9authd" command when called without
// any subcommands.
var RootCmd = cli.NewRootCommand("p9authd",
	"p9auth ticket service daemon",
	`p9authd is the trusted third party of the p9auth handshake.

It holds the long-term secret keys of every principal in its
authentication domain and answers ticket requests with freshly
keyed ticket pairs.`)
