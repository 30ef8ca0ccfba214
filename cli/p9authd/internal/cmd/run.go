package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vimanuelt/p9sk1/authsrv"
	"github.com/vimanuelt/p9sk1/cli"
	"github.com/vimanuelt/p9sk1/keystore"
)

// runCmd represents the run command
var runCmd = cli.NewRunCommand("p9auth ticket service daemon", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "config.toml", "Path to daemon configuration file")
	runCmd.Flags().BoolP("pid", "p", false, "Write down the process id to p9authd.pid in the current working directory")
}

func run(cmd *cobra.Command, args []string) {
	confPath := cmd.Flag("config").Value.String()
	pid, _ := strconv.ParseBool(cmd.Flag("pid").Value.String())
	// ignore the error here since it is handled by the flag parser.
	if pid {
		writePID()
	}

	conf := &authsrv.Config{}
	if err := conf.Load(confPath, "toml"); err != nil {
		log.Fatal(err)
	}
	dir, err := keystore.OpenLevelDB(conf.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer dir.Close()
	serv := authsrv.NewServer(conf, dir)

	// run the daemon until receiving an interrupt signal
	serv.Run(conf.ListenAddress)
	serv.ConfigHotReload()
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	<-ch
	serv.Shutdown()
}

func writePID() {
	pidf, err := os.OpenFile(path.Join(".", "p9authd.pid"), os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Printf("Cannot create p9authd.pid: %v", err)
		return
	}
	if _, err := fmt.Fprint(pidf, os.Getpid()); err != nil {
		log.Printf("Cannot write to pid file: %v", err)
	}
}
