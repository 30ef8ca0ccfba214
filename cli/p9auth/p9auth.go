// Executable p9auth client tool. See README for
// usage instructions.
package main

import (
	"github.com/vimanuelt/p9sk1/cli"
	"github.com/vimanuelt/p9sk1/cli/p9auth/internal/cmd"
)

func main() {
	cli.Execute(cmd.RootCmd)
}
