// Defines the per-role phase sequences of the handshake.

package protocol

// A Phase is one state of a session's handshake. Each role walks its
// own fixed sequence; no phase is ever revisited or skipped.
//
// Client: CHaveChal -> CNeedTreq -> CHaveTicket -> CNeedAuth -> Established.
// Server: SNeedChal -> SHaveTreq -> SNeedTicket -> SHaveAuth -> Established.
//
// The flawed P9SK2 variant enters the sequences at CNeedTreq and
// SHaveTreq respectively, skipping the channel-challenge exchange.
type Phase int

const (
	// client phases
	CHaveChal Phase = iota
	CNeedTreq
	CHaveTicket
	CNeedAuth

	// server phases
	SNeedChal
	SHaveTreq
	SNeedTicket
	SHaveAuth

	// Established is the terminal phase of both roles; the session
	// result is available and no further messages are exchanged.
	Established
)

var phaseNames = map[Phase]string{
	CHaveChal:   "CHaveChal",
	CNeedTreq:   "CNeedTreq",
	CHaveTicket: "CHaveTicket",
	CNeedAuth:   "CNeedAuth",
	SNeedChal:   "SNeedChal",
	SHaveTreq:   "SHaveTreq",
	SNeedTicket: "SNeedTicket",
	SHaveAuth:   "SHaveAuth",
	Established: "Established",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown phase"
}

// A Role distinguishes the connection initiator from the responder.
type Role int

const (
	RoleClient Role = iota + 1
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	}
	return "unknown role"
}
