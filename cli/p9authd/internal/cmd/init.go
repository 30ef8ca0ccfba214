package cmd

import (
	"log"
	"path"

	"github.com/spf13/cobra"

	"github.com/vimanuelt/p9sk1/application"
	"github.com/vimanuelt/p9sk1/authsrv"
	"github.com/vimanuelt/p9sk1/cli"
)

// initCmd represents the init command
var initCmd = cli.NewInitCommand("p9auth ticket service daemon", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
}

func initRunFunc(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	mkConfig(dir)
}

func mkConfig(dir string) {
	file := path.Join(dir, "config.toml")
	addr := &application.ServerAddress{
		Address: "tcp://0.0.0.0:567",
	}
	logger := &application.LoggerConfig{
		EnableStacktrace: true,
		Environment:      "development",
		Path:             "p9authd.log",
	}

	conf := authsrv.NewConfig(file, "toml", addr, path.Join(dir, "keys.db"), logger)
	if err := conf.Save(); err != nil {
		log.Println(err)
	}
}
