// Implements the message pump that relays a session over a duplex
// stream until it is established.

package protocol

import "io"

// Proxy drives s over rw: it sends every message the current phase
// produces and feeds back every message the peer owes, until the
// session is established, and returns the session result. The phase
// dispatch of the session decides direction and message size, so the
// same pump serves both roles and both variants. Any session or
// stream error aborts the handshake.
func Proxy(rw io.ReadWriter, s *Session) (*SessionResult, error) {
	for s.Phase() != Established {
		if n, err := messageSize(s.Read); err == nil {
			buf := make([]byte, n)
			if _, err := s.Read(buf); err != nil {
				return nil, err
			}
			if _, err := rw.Write(buf); err != nil {
				return nil, err
			}
			continue
		}
		n, err := messageSize(s.Write)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(rw, buf); err != nil {
			return nil, err
		}
		if _, err := s.Write(buf); err != nil {
			return nil, err
		}
	}
	return s.Result(), nil
}

// messageSize probes op with an empty buffer: a phase that supports
// the operation reports its exact message size, any other phase
// reports its dispatch error.
func messageSize(op func([]byte) (int, error)) (int, error) {
	_, err := op(nil)
	if small, ok := err.(*TooSmallError); ok {
		return small.Required, nil
	}
	return 0, err
}
