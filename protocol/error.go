// Defines the types of errors the engine may return to its caller.

package protocol

import "fmt"

// An ErrorCode identifies the failure of a session operation.
type ErrorCode int

const (
	// ErrNoRole indicates that the attribute set given at session
	// initialization carries no recognized "role" attribute.
	ErrNoRole ErrorCode = iota + 1

	// ErrKeyNotFound indicates that the key store could not resolve
	// a key record for the requested identity and domain.
	ErrKeyNotFound

	// ErrPhase indicates an operation invoked in a phase that does
	// not support it. The phase is left unchanged; the caller can
	// recover by fixing its call order.
	ErrPhase

	// ErrTicketService indicates that the ticket-issuing exchange
	// failed, whether by network error, bad reply, or a failure the
	// service itself reported. Fatal to the session attempt.
	ErrTicketService

	// ErrDecode indicates a malformed wire structure from the peer.
	ErrDecode

	// ErrProtocol indicates a structurally valid message whose
	// contents fail the handshake's binding checks: a wrong purpose
	// tag, a challenge that does not match this session, or a ticket
	// that does not decrypt under the holder's key.
	ErrProtocol

	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed
)

var errorMessages = map[ErrorCode]string{
	ErrNoRole:        "auth: no role attribute",
	ErrKeyNotFound:   "auth: key not found",
	ErrPhase:         "auth: operation invalid in current phase",
	ErrTicketService: "auth: cannot get tickets",
	ErrDecode:        "auth: malformed message",
	ErrProtocol:      "auth: protocol botch",
	ErrSessionClosed: "auth: session closed",
}

func (e ErrorCode) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("auth: unknown error %d", int(e))
}

// A TooSmallError reports a caller-supplied buffer that cannot hold
// the message of the current phase. Required is the exact number of
// bytes needed; the phase is left unchanged, so the caller can retry
// with a larger buffer.
type TooSmallError struct {
	Required int
}

func (e *TooSmallError) Error() string {
	return fmt.Sprintf("auth: buffer too small, need %d bytes", e.Required)
}
