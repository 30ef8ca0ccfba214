package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vimanuelt/p9sk1/authsrv"
	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/wire"
)

// addkeyCmd represents the addkey command
var addkeyCmd = &cobra.Command{
	Use:   "addkey",
	Short: "Register a principal's key with the daemon's database.",
	Long: `Register a principal's key with the daemon's database.

The secret is read from the terminal without echo and folded into
a DES key the same way the handshake folds passwords.`,
	Run: addkeyRunFunc,
}

func init() {
	RootCmd.AddCommand(addkeyCmd)
	addkeyCmd.Flags().StringP("config", "c", "config.toml", "Path to daemon configuration file")
	addkeyCmd.Flags().StringP("user", "u", "", "Name of the principal")
	addkeyCmd.Flags().StringP("dom", "D", "", "Authentication domain of the principal")
	addkeyCmd.Flags().StringP("role", "r", keystore.RoleClient, "Role of the principal (client or server)")
}

func addkeyRunFunc(cmd *cobra.Command, args []string) {
	user := cmd.Flag("user").Value.String()
	dom := cmd.Flag("dom").Value.String()
	role := cmd.Flag("role").Value.String()
	if user == "" || dom == "" {
		log.Fatal("Both --user and --dom must be given")
	}
	if role != keystore.RoleClient && role != keystore.RoleServer {
		log.Fatalf("Unknown role %q", role)
	}

	conf := &authsrv.Config{}
	if err := conf.Load(cmd.Flag("config").Value.String(), "toml"); err != nil {
		log.Fatal(err)
	}
	dir, err := keystore.OpenLevelDB(conf.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer dir.Close()

	fmt.Fprintf(os.Stderr, "password[%s@%s]: ", user, dom)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatal(err)
	}

	k := &keystore.Key{
		User:   user,
		Dom:    dom,
		Role:   role,
		Secret: wire.PassToKey(string(pass)),
	}
	if err := dir.Put(k); err != nil {
		log.Fatal(err)
	}
}
