// Implements ticket acquisition: the client-side exchange with the
// trusted ticket-issuing service that turns a responder's ticket
// request into the ticket pair backing the handshake.

package protocol

import (
	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/wire"
)

// A TicketService answers ticket requests with ticket pairs. Tickets
// returns the raw reply payload: the client's ticket sealed under the
// client's key followed by the server's ticket sealed under the
// server's key, 2*wire.TicketLen bytes in total. Implementations talk
// to a real ticket server over the network; tests substitute an
// in-process issuer.
type TicketService interface {
	Tickets(tr *wire.Ticketreq, key *keystore.Key) ([]byte, error)
}

// getTickets completes the responder's ticket request with the
// client's identity, asks the ticket service for the ticket pair,
// verifies the client ticket against this session, and stages the
// still-sealed server ticket for the upcoming read.
func (s *Session) getTickets() error {
	s.tr.HostID = s.key.User
	s.tr.UID = s.key.User

	p, err := s.tickets.Tickets(&s.tr, s.key)
	if err != nil {
		return ErrTicketService
	}
	if len(p) != 2*wire.TicketLen {
		return ErrTicketService
	}

	t, err := wire.OpenTicket(p[:wire.TicketLen], s.key.Secret[:])
	if err != nil {
		return ErrTicketService
	}
	// the service echoes our challenge inside the sealed ticket;
	// anything else means the reply does not answer this request
	if t.Num != wire.AuthTc || t.Chal != s.tr.Chal {
		return ErrTicketService
	}
	s.t = *t

	// the server's ticket is opaque to us and is relayed as is
	copy(s.tbuf[:wire.TicketLen], p[wire.TicketLen:])
	return nil
}
