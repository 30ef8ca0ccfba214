// Implements the network client side of the ticket service exchange.

package authsrv

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/protocol"
	"github.com/vimanuelt/p9sk1/wire"
)

// defaultTimeout bounds one full ticket exchange, dial included.
const defaultTimeout = 10 * time.Second

// A Client obtains ticket pairs from a remote ticket service. It
// implements protocol.TicketService, so a client session can be
// pointed directly at a daemon. Addr is formatted as a url:
// scheme://address, with the same schemes the daemon listens on.
type Client struct {
	Addr    string
	Timeout time.Duration
}

var _ protocol.TicketService = (*Client)(nil)

// NewClient constructs a ticket service client for the daemon at the
// given address.
func NewClient(addr string) *Client {
	return &Client{Addr: addr, Timeout: defaultTimeout}
}

// Tickets performs one ticket exchange: it sends the marshalled
// request and returns the raw ticket pair from an affirmative reply.
// An AuthErr reply is surfaced as an error carrying the daemon's
// message.
func (c *Client) Tickets(tr *wire.Ticketreq, key *keystore.Key) ([]byte, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.Timeout))

	if _, err := conn.Write(tr.Marshal()); err != nil {
		return nil, err
	}

	var status [1]byte
	if _, err := io.ReadFull(conn, status[:]); err != nil {
		return nil, err
	}
	switch status[0] {
	case wire.AuthOK:
		p := make([]byte, 2*wire.TicketLen)
		if _, err := io.ReadFull(conn, p); err != nil {
			return nil, err
		}
		return p, nil
	case wire.AuthErr:
		msg := make([]byte, wire.ErrMsgLen)
		if _, err := io.ReadFull(conn, msg); err != nil {
			return nil, err
		}
		if i := bytes.IndexByte(msg, 0); i >= 0 {
			msg = msg[:i]
		}
		return nil, fmt.Errorf("authsrv: %s", msg)
	}
	return nil, fmt.Errorf("authsrv: unexpected reply status %d", status[0])
}

func (c *Client) dial() (net.Conn, error) {
	u, err := url.Parse(c.Addr)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "tcp":
		return net.DialTimeout(u.Scheme, u.Host, c.Timeout)
	case "unix":
		return net.DialTimeout(u.Scheme, u.Path, c.Timeout)
	}
	return nil, fmt.Errorf("authsrv: unknown network type %q", u.Scheme)
}
