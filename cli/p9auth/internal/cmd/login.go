package cmd

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vimanuelt/p9sk1/authsrv"
	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/protocol"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate to a p9sk-speaking server.",
	Long: `Authenticate to a p9sk-speaking server.

This runs the client side of the handshake against the given server,
obtaining tickets from the given ticket service. Credentials are
asked for on the terminal.`,
	Run: loginRunFunc,
}

func init() {
	RootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("server", "s", "", "Address of the server to authenticate to (scheme://address)")
	loginCmd.Flags().StringP("authsrv", "a", "tcp://127.0.0.1:567", "Address of the ticket service")
	loginCmd.Flags().Bool("p9sk2", false, "Speak the legacy p9sk2 variant")
}

func loginRunFunc(cmd *cobra.Command, args []string) {
	server := cmd.Flag("server").Value.String()
	if server == "" {
		log.Fatal("--server must be given")
	}
	variant := protocol.P9SK1
	if sk2, _ := strconv.ParseBool(cmd.Flag("p9sk2").Value.String()); sk2 {
		variant = protocol.P9SK2
	}

	// credentials not known up front are asked for on the terminal,
	// using the variant's prompt template
	store := keystore.NewPromptStore(keystore.NewMemStore())
	tickets := authsrv.NewClient(cmd.Flag("authsrv").Value.String())

	session, err := protocol.NewSession(variant,
		keystore.Attrs{"role": "client"}, store, tickets)
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	conn, err := dial(server)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	res, err := protocol.Proxy(conn, session)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("authenticated %s to %s (%s)\n",
		res.ClientUID, res.ServerUID, variant.Name())
}

func dial(addr string) (net.Conn, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "tcp":
		return net.Dial(u.Scheme, u.Host)
	case "unix":
		return net.Dial(u.Scheme, u.Path)
	}
	return nil, fmt.Errorf("unknown network type %q", u.Scheme)
}
