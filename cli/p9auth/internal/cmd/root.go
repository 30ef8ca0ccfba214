package cmd

import (
	"github.com/vimanuelt/p9sk1/cli"
)

// RootCmd represents the base "p9auth" command when called without
// any subcommands.
var RootCmd = cli.NewRootCommand("p9auth",
	"p9auth client tool",
	`p9auth authenticates to a p9sk-speaking server.

It runs the client side of the handshake over a fresh connection,
asking on the terminal for credentials that are not already known,
and reports the authenticated identity pair.`)
