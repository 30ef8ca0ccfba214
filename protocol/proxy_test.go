package protocol

import (
	"bytes"
	"net"
	"testing"
)

func TestProxyHandshake(t *testing.T) {
	for _, v := range []Variant{P9SK1, P9SK2} {
		t.Run(v.Name(), func(t *testing.T) {
			store, ts := newTestSetup()
			c, s := newTestPair(t, v, store, ts)
			defer c.Close()
			defer s.Close()

			cconn, sconn := net.Pipe()
			defer cconn.Close()
			defer sconn.Close()

			type outcome struct {
				res *SessionResult
				err error
			}
			done := make(chan outcome, 1)
			go func() {
				res, err := Proxy(sconn, s)
				done <- outcome{res, err}
			}()

			cres, err := Proxy(cconn, c)
			if err != nil {
				t.Fatal("Client proxy failed:", err)
			}
			sout := <-done
			if sout.err != nil {
				t.Fatal("Server proxy failed:", sout.err)
			}
			if !bytes.Equal(cres.Secret, sout.res.Secret) {
				t.Error("Expect both sides to derive the same secret")
			}
			if cres.ClientUID != "alice" || sout.res.ClientUID != "alice" {
				t.Error("Expect authenticated client identity alice")
			}
		})
	}
}

func TestProxyClosedSession(t *testing.T) {
	store, ts := newTestSetup()
	c, s := newTestPair(t, P9SK1, store, ts)
	defer s.Close()
	c.Close()

	cconn, sconn := net.Pipe()
	defer cconn.Close()
	defer sconn.Close()

	if _, err := Proxy(cconn, c); err != ErrSessionClosed {
		t.Fatal("Expect ErrSessionClosed, got", err)
	}
}
