// Defines fixtures shared by the engine tests: an in-process ticket
// issuer and a key store wrapper that counts releases.

package protocol

import (
	"errors"

	"github.com/vimanuelt/p9sk1/crypto"
	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/wire"
)

// testTicketService issues ticket pairs in process, standing in for a
// real ticket server. It knows the client secret by host identity and
// the server secret by authentication identity.
type testTicketService struct {
	clientKeys map[string][wire.DESKeyLen]byte
	serverKeys map[string][wire.DESKeyLen]byte
	fail       bool
	short      bool
}

func newTestTicketService() *testTicketService {
	return &testTicketService{
		clientKeys: make(map[string][wire.DESKeyLen]byte),
		serverKeys: make(map[string][wire.DESKeyLen]byte),
	}
}

func (ts *testTicketService) addClient(user string, secret [wire.DESKeyLen]byte) {
	ts.clientKeys[user] = secret
}

func (ts *testTicketService) addServer(user string, secret [wire.DESKeyLen]byte) {
	ts.serverKeys[user] = secret
}

func (ts *testTicketService) Tickets(tr *wire.Ticketreq, key *keystore.Key) ([]byte, error) {
	if ts.fail {
		return nil, errors.New("ticket service unavailable")
	}
	ck, ok := ts.clientKeys[tr.HostID]
	if !ok {
		return nil, errors.New("unknown client")
	}
	sk, ok := ts.serverKeys[tr.AuthID]
	if !ok {
		return nil, errors.New("unknown server")
	}

	var sessionKey [wire.DESKeyLen]byte
	r, err := crypto.MakeRand()
	if err != nil {
		return nil, err
	}
	copy(sessionKey[:], r)

	tc := wire.Ticket{
		Num:  wire.AuthTc,
		Chal: tr.Chal,
		CUID: tr.UID,
		SUID: tr.UID,
		Key:  sessionKey,
	}
	tss := wire.Ticket{
		Num:  wire.AuthTs,
		Chal: tr.Chal,
		CUID: tr.UID,
		SUID: tr.UID,
		Key:  sessionKey,
	}

	p := append(tc.Seal(ck[:]), tss.Seal(sk[:])...)
	if ts.short {
		p = p[:wire.TicketLen]
	}
	return p, nil
}

// countingStore wraps a key store and counts releases, so tests can
// assert a session releases its key record exactly once.
type countingStore struct {
	keystore.Store
	released int
}

func (cs *countingStore) Release(k *keystore.Key) error {
	cs.released++
	return cs.Store.Release(k)
}

// newTestSetup builds a key store and ticket service populated with a
// client "alice" and a server "bubba" in domain "example.com".
func newTestSetup() (*keystore.MemStore, *testTicketService) {
	var aliceKey, bubbaKey [wire.DESKeyLen]byte
	copy(aliceKey[:], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})
	copy(bubbaKey[:], []byte{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17})

	store := keystore.NewMemStore()
	store.Add(keystore.Key{
		User: "alice", Dom: "example.com",
		Role: keystore.RoleClient, Secret: aliceKey,
	})
	store.Add(keystore.Key{
		User: "bubba", Dom: "example.com",
		Role: keystore.RoleServer, Secret: bubbaKey,
	})

	ts := newTestTicketService()
	ts.addClient("alice", aliceKey)
	ts.addServer("bubba", bubbaKey)
	return store, ts
}

// runHandshake drives a client and a server session to completion,
// shuttling each message in a buffer of exactly the required size.
func runHandshake(c, s *Session) error {
	steps := []struct {
		from, to *Session
	}{
		{c, s}, // challenge (skipped for P9SK2)
		{s, c}, // ticket request
		{c, s}, // ticket + authenticator
		{s, c}, // reply authenticator
	}
	if c.Variant() == P9SK2 {
		steps = steps[1:]
	}
	for _, st := range steps {
		var probe [1]byte
		_, err := st.from.Read(probe[:0])
		tooSmall, ok := err.(*TooSmallError)
		if !ok {
			return errors.New("expected TooSmallError probing message size")
		}
		buf := make([]byte, tooSmall.Required)
		if _, err := st.from.Read(buf); err != nil {
			return err
		}
		if _, err := st.to.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
