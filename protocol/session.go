// Implements the per-session state machine of the p9sk handshake:
// initialization, the phase-dispatched read and write operations, and
// session teardown.

package protocol

import (
	"github.com/vimanuelt/p9sk1/crypto"
	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/wire"
)

// A Session holds the state of one handshake between two principals.
// It is created by NewSession, driven by a strict alternation of Read
// and Write calls dictated by its role and phase, and destroyed by
// Close. A Session is owned by a single caller: it is not safe for
// concurrent use, and a multi-session server must create one Session
// per connection rather than share engine state.
type Session struct {
	variant Variant
	role    Role
	phase   Phase

	store   keystore.Store
	tickets TicketService

	key *keystore.Key
	tr  wire.Ticketreq
	t   wire.Ticket

	// cchal is this session's channel challenge; tbuf stages the
	// outgoing {ticket, authenticator} pair. Both are owned by the
	// session and never shared across sessions.
	cchal [wire.ChalLen]byte
	tbuf  [wire.TicketLen + wire.AuthentLen]byte

	secret []byte
	result *SessionResult
	closed bool

	// speakFor marks a session authorized to assert an identity on
	// behalf of another principal. Reserved for delegation; nothing
	// reads it yet.
	speakFor bool
}

// A SessionResult reports the outcome of a completed handshake: the
// authenticated identity pair and the shared secret derived from the
// ticket's session key. It is available on both sides once the
// terminal phase is reached, and both sides hold the same values.
type SessionResult struct {
	ClientUID string
	ServerUID string
	Secret    []byte // SecretLen bytes, released at session close
}

// NewSession creates a session for the given protocol variant. The
// caller's role is resolved from the "role" attribute of attrs; an
// absent or unrecognized role yields ErrNoRole. Server sessions
// resolve their key record from store immediately (attrs may narrow
// the lookup with "user" and "dom") and fail with ErrKeyNotFound if
// no record matches. The ticket service is only exercised by client
// sessions, during the ticket-request write.
func NewSession(v Variant, attrs keystore.Attrs, store keystore.Store,
	tickets TicketService) (*Session, error) {
	switch attrs.Get("role") {
	case keystore.RoleClient:
		return newClientSession(v, store, tickets)
	case keystore.RoleServer:
		return newServerSession(v, attrs, store)
	}
	return nil, ErrNoRole
}

func newClientSession(v Variant, store keystore.Store,
	tickets TicketService) (*Session, error) {
	s := &Session{
		variant: v,
		role:    RoleClient,
		store:   store,
		tickets: tickets,
	}
	switch v {
	case P9SK1:
		// the client's challenge is generated up front, before any
		// network interaction
		s.phase = CHaveChal
		if err := makeChal(s.cchal[:]); err != nil {
			return nil, err
		}
	case P9SK2:
		// the flaw: no challenge of our own; it arrives with the
		// ticket request
		s.phase = CNeedTreq
	default:
		panic("auth: unknown variant")
	}
	return s, nil
}

func newServerSession(v Variant, attrs keystore.Attrs,
	store keystore.Store) (*Session, error) {
	k, err := store.Acquire(keystore.RoleServer,
		attrs.Get("user"), attrs.Get("dom"), "")
	if err != nil {
		return nil, ErrKeyNotFound
	}
	s := &Session{
		variant: v,
		role:    RoleServer,
		store:   store,
		key:     k,
	}
	s.tr.Type = wire.AuthTreq
	s.tr.AuthID = k.User
	s.tr.AuthDom = k.Dom
	if err := makeChal(s.tr.Chal[:]); err != nil {
		s.store.Release(k)
		return nil, err
	}
	switch v {
	case P9SK1:
		s.phase = SNeedChal
	case P9SK2:
		// mirror of the client-side flaw: the ticket request's
		// challenge doubles as the channel challenge
		s.phase = SHaveTreq
		s.cchal = s.tr.Chal
	default:
		s.store.Release(k)
		panic("auth: unknown variant")
	}
	return s, nil
}

func makeChal(dst []byte) error {
	r, err := crypto.MakeRand()
	if err != nil {
		return err
	}
	copy(dst, r)
	return nil
}

// Phase returns the session's current phase.
func (s *Session) Phase() Phase { return s.phase }

// Role returns the session's role.
func (s *Session) Role() Role { return s.role }

// Variant returns the protocol variant the session speaks.
func (s *Session) Variant() Variant { return s.variant }

// Result returns the session result, or nil before the terminal
// phase is reached.
func (s *Session) Result() *SessionResult { return s.result }

// Read produces the outgoing message of the current phase into p and
// advances the phase. It returns the number of bytes written, which
// is always the exact message size of the phase. If p cannot hold the
// message, Read returns a TooSmallError carrying the required size;
// if the current phase has no outgoing message, it returns ErrPhase.
// In both cases the phase is unchanged.
func (s *Session) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	switch s.phase {
	case CHaveChal:
		m := wire.ChalLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		copy(p, s.cchal[:])
		s.phase = CNeedTreq
		return m, nil

	case SHaveTreq:
		m := wire.TickreqLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		copy(p, s.tr.Marshal())
		s.phase = SNeedTicket
		return m, nil

	case CHaveTicket:
		m := wire.TicketLen + wire.AuthentLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		copy(p, s.tbuf[:])
		s.phase = CNeedAuth
		return m, nil

	case SHaveAuth:
		m := wire.AuthentLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		copy(p, s.tbuf[wire.TicketLen:])
		s.establish()
		return m, nil
	}
	return 0, ErrPhase
}

// Write consumes the incoming message of the current phase from p and
// advances the phase. It returns the number of bytes consumed, which
// is always the exact message size of the phase. Errors mirror Read;
// additionally a message that fails decoding or the handshake's
// binding checks returns ErrDecode or ErrProtocol and leaves the
// session unusable.
func (s *Session) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	switch s.phase {
	case SNeedChal:
		m := wire.ChalLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		copy(s.cchal[:], p)
		s.phase = SHaveTreq
		return m, nil

	case CNeedTreq:
		m := wire.TickreqLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		if err := s.writeTicketreq(p[:m]); err != nil {
			return 0, err
		}
		s.phase = CHaveTicket
		return m, nil

	case SNeedTicket:
		m := wire.TicketLen + wire.AuthentLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		if err := s.writeTicket(p[:m]); err != nil {
			return 0, err
		}
		s.phase = SHaveAuth
		return m, nil

	case CNeedAuth:
		m := wire.AuthentLen
		if len(p) < m {
			return 0, &TooSmallError{m}
		}
		a, err := wire.OpenAuthenticator(p[:m], s.t.Key[:])
		if err != nil {
			return 0, ErrDecode
		}
		if a.Num != wire.AuthAs || a.Chal != s.cchal || a.ID != 0 {
			return 0, ErrProtocol
		}
		s.establish()
		return m, nil
	}
	return 0, ErrPhase
}

// writeTicketreq handles the client's CNeedTreq phase: it decodes the
// responder's ticket request, resolves the client's own key and asks
// the ticket service for the ticket pair, then stages the outgoing
// {server ticket, client-asserting authenticator} buffer.
func (s *Session) writeTicketreq(p []byte) error {
	tr, err := wire.UnmarshalTicketreq(p)
	if err != nil {
		return ErrDecode
	}
	if tr.Type != wire.AuthTreq {
		return ErrProtocol
	}
	s.tr = *tr
	if s.variant == P9SK2 {
		// the flaw: adopt the responder's challenge as this
		// channel's challenge
		s.cchal = s.tr.Chal
	}

	k, err := s.store.Acquire(keystore.RoleClient, "",
		s.tr.AuthDom, s.variant.KeyPrompt())
	if err != nil {
		return ErrKeyNotFound
	}
	s.key = k

	if err := s.getTickets(); err != nil {
		return err
	}

	a := wire.Authenticator{Num: wire.AuthAc, Chal: s.cchal}
	copy(s.tbuf[wire.TicketLen:], a.Seal(s.t.Key[:]))
	return nil
}

// writeTicket handles the server's SNeedTicket phase: it decrypts the
// ticket with the server's own key, checks it against the issued
// request, checks the client's authenticator under the recovered
// session key, and stages the server-asserting authenticator.
func (s *Session) writeTicket(p []byte) error {
	t, err := wire.OpenTicket(p[:wire.TicketLen], s.key.Secret[:])
	if err != nil {
		return ErrDecode
	}
	// only a ticket minted for us decrypts into the purpose tag and
	// the challenge we put in the request
	if t.Num != wire.AuthTs || t.Chal != s.tr.Chal {
		return ErrProtocol
	}
	s.t = *t

	a, err := wire.OpenAuthenticator(p[wire.TicketLen:], s.t.Key[:])
	if err != nil {
		return ErrDecode
	}
	if a.Num != wire.AuthAc || a.Chal != s.cchal || a.ID != 0 {
		return ErrProtocol
	}

	reply := wire.Authenticator{Num: wire.AuthAs, Chal: s.cchal}
	copy(s.tbuf[wire.TicketLen:], reply.Seal(s.t.Key[:]))
	return nil
}

// establish derives the shared secret from the ticket's session key
// and materializes the session result.
func (s *Session) establish() {
	s.secret = wire.DES56to64(s.t.Key[:])
	s.result = &SessionResult{
		ClientUID: s.t.CUID,
		ServerUID: s.t.SUID,
		Secret:    s.secret,
	}
	s.phase = Established
}

// Close releases the session's key record back to the store and
// destroys the derived secret. The key record and secret are released
// exactly once even if Close is called again.
func (s *Session) Close() error {
	var err error
	if s.key != nil {
		err = s.store.Release(s.key)
		s.key = nil
	}
	if s.secret != nil {
		for i := range s.secret {
			s.secret[i] = 0
		}
		s.secret = nil
	}
	s.result = nil
	s.closed = true
	return err
}
