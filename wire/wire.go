// Defines the fixed-size wire structures of the p9sk handshake --
// ticket requests, tickets and authenticators -- and their
// marshalling, with DES encryption for the latter two.

package wire

import (
	"encoding/binary"
	"errors"
)

// Wire format constants. Every message of the handshake has a fixed
// size; the engine validates caller buffers against these exactly.
const (
	ANameLen  = 28 // maximum length of a principal name
	DomLen    = 48 // maximum length of an authentication domain
	DESKeyLen = 7  // DES key length, 56 bits
	ChalLen   = 8  // challenge length
	SecretLen = 8  // derived shared secret length
	ErrMsgLen = 64 // error string in an AuthErr reply

	// TickreqLen is the marshalled size of a Ticketreq.
	TickreqLen = 1 + ANameLen + DomLen + ChalLen + ANameLen + ANameLen

	// TicketLen is the marshalled (and encrypted) size of a Ticket.
	TicketLen = 1 + ChalLen + ANameLen + ANameLen + DESKeyLen

	// AuthentLen is the marshalled (and encrypted) size of an
	// Authenticator.
	AuthentLen = 1 + ChalLen + 4
)

// Message type and purpose codes.
const (
	AuthTreq = 1 // ticket request
	AuthOK   = 4 // affirmative reply from the ticket service
	AuthErr  = 5 // error reply from the ticket service

	AuthTs = 64 // ticket encrypted with the server's key
	AuthTc = 65 // ticket encrypted with the client's key
	AuthAs = 66 // server-asserting authenticator
	AuthAc = 67 // client-asserting authenticator
)

// ErrMessageSize indicates that a buffer passed for unmarshalling does
// not have the exact size of the expected wire structure.
var ErrMessageSize = errors.New("wire: wrong message size")

// A Ticketreq is the plaintext message a responder sends to describe
// the ticket it needs. AuthID and AuthDom name the responder's identity
// with the ticket service; Chal is the challenge the issued tickets
// must be bound to. HostID and UID name the initiator and are filled in
// during ticket acquisition.
type Ticketreq struct {
	Type    uint8
	AuthID  string
	AuthDom string
	Chal    [ChalLen]byte
	HostID  string
	UID     string
}

// Marshal returns the TickreqLen-byte encoding of the request.
// Over-long names and domains are truncated, matching the fixed field
// widths of the wire format.
func (tr *Ticketreq) Marshal() []byte {
	p := make([]byte, TickreqLen)
	p[0] = tr.Type
	b := p[1:]
	b = putName(b, tr.AuthID, ANameLen)
	b = putName(b, tr.AuthDom, DomLen)
	copy(b, tr.Chal[:])
	b = b[ChalLen:]
	b = putName(b, tr.HostID, ANameLen)
	putName(b, tr.UID, ANameLen)
	return p
}

// UnmarshalTicketreq parses a TickreqLen-byte ticket request.
func UnmarshalTicketreq(p []byte) (*Ticketreq, error) {
	if len(p) != TickreqLen {
		return nil, ErrMessageSize
	}
	tr := new(Ticketreq)
	tr.Type = p[0]
	b := p[1:]
	tr.AuthID, b = getName(b, ANameLen)
	tr.AuthDom, b = getName(b, DomLen)
	copy(tr.Chal[:], b)
	b = b[ChalLen:]
	tr.HostID, b = getName(b, ANameLen)
	tr.UID, _ = getName(b, ANameLen)
	return tr, nil
}

// A Ticket is the credential minted by the ticket service. It binds a
// session key to the identity pair {CUID, SUID} and the challenge of
// the request it answers. On the wire it is encrypted with the key of
// the principal it is destined for; Num says which (AuthTc or AuthTs).
type Ticket struct {
	Num  uint8
	Chal [ChalLen]byte
	CUID string
	SUID string
	Key  [DESKeyLen]byte
}

// Seal marshals the ticket and encrypts it with the given 56-bit key.
func (t *Ticket) Seal(key []byte) []byte {
	p := make([]byte, TicketLen)
	p[0] = t.Num
	b := p[1:]
	copy(b, t.Chal[:])
	b = b[ChalLen:]
	b = putName(b, t.CUID, ANameLen)
	b = putName(b, t.SUID, ANameLen)
	copy(b, t.Key[:])
	encryptChain(key, p)
	return p
}

// OpenTicket decrypts a TicketLen-byte ticket with the given 56-bit
// key and parses it. DES provides no integrity: a ticket opened with
// the wrong key parses into garbage, which the caller must detect by
// checking Num and Chal against what it expects.
func OpenTicket(p, key []byte) (*Ticket, error) {
	if len(p) != TicketLen {
		return nil, ErrMessageSize
	}
	buf := make([]byte, TicketLen)
	copy(buf, p)
	decryptChain(key, buf)
	t := new(Ticket)
	t.Num = buf[0]
	b := buf[1:]
	copy(t.Chal[:], b)
	b = b[ChalLen:]
	t.CUID, b = getName(b, ANameLen)
	t.SUID, b = getName(b, ANameLen)
	copy(t.Key[:], b)
	return t, nil
}

// An Authenticator proves possession of a ticket's session key. Num is
// the purpose tag (AuthAc for the client-asserting direction, AuthAs
// for the server-asserting one) and Chal must equal the channel
// challenge of the handshake it belongs to.
type Authenticator struct {
	Num  uint8
	Chal [ChalLen]byte
	ID   uint32
}

// Seal marshals the authenticator and encrypts it with the given
// 56-bit session key.
func (a *Authenticator) Seal(key []byte) []byte {
	p := make([]byte, AuthentLen)
	p[0] = a.Num
	copy(p[1:], a.Chal[:])
	binary.LittleEndian.PutUint32(p[1+ChalLen:], a.ID)
	encryptChain(key, p)
	return p
}

// OpenAuthenticator decrypts an AuthentLen-byte authenticator with the
// given 56-bit session key and parses it. As with OpenTicket, the
// caller must check Num and Chal itself.
func OpenAuthenticator(p, key []byte) (*Authenticator, error) {
	if len(p) != AuthentLen {
		return nil, ErrMessageSize
	}
	buf := make([]byte, AuthentLen)
	copy(buf, p)
	decryptChain(key, buf)
	a := new(Authenticator)
	a.Num = buf[0]
	copy(a.Chal[:], buf[1:])
	a.ID = binary.LittleEndian.Uint32(buf[1+ChalLen:])
	return a, nil
}

// putName copies s into a NUL-padded field of width n and returns the
// remainder of b. Over-long strings are truncated to n-1 bytes so the
// field always ends in NUL.
func putName(b []byte, s string, n int) []byte {
	if len(s) > n-1 {
		s = s[:n-1]
	}
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = 0
	}
	return b[n:]
}

// getName reads a NUL-padded field of width n from b and returns the
// string and the remainder of b.
func getName(b []byte, n int) (string, []byte) {
	f := b[:n]
	for i, c := range f {
		if c == 0 {
			f = f[:i]
			break
		}
	}
	return string(f), b[n:]
}
