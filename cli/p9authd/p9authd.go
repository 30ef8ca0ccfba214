// Executable p9auth ticket service daemon. See README for
// usage instructions.
package main

import (
	"github.com/vimanuelt/p9sk1/cli"
	"github.com/vimanuelt/p9sk1/cli/p9authd/internal/cmd"
)

func main() {
	cli.Execute(cmd.RootCmd)
}
