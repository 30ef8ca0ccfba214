package authsrv

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/vimanuelt/p9sk1/application"
	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/protocol"
	"github.com/vimanuelt/p9sk1/wire"
)

var (
	aliceKey = [wire.DESKeyLen]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	bubbaKey = [wire.DESKeyLen]byte{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}
)

func testDirectory() *keystore.MemStore {
	store := keystore.NewMemStore()
	store.Add(keystore.Key{
		User: "alice", Dom: "example.com",
		Role: keystore.RoleClient, Secret: aliceKey,
	})
	store.Add(keystore.Key{
		User: "bubba", Dom: "example.com",
		Role: keystore.RoleServer, Secret: bubbaKey,
	})
	return store
}

func testServer(t *testing.T) (*Server, *application.ServerAddress) {
	t.Helper()
	addr := &application.ServerAddress{
		Address: "unix://" + filepath.Join(t.TempDir(), "authsrv.sock"),
	}
	conf := NewConfig(filepath.Join(t.TempDir(), "config.toml"), "toml",
		addr, "", &application.LoggerConfig{Environment: "development"})
	return NewServer(conf, testDirectory()), addr
}

func testRequest() *wire.Ticketreq {
	return &wire.Ticketreq{
		Type:    wire.AuthTreq,
		AuthID:  "bubba",
		AuthDom: "example.com",
		Chal:    [wire.ChalLen]byte{1, 2, 3, 4, 5, 6, 7, 8},
		HostID:  "alice",
		UID:     "alice",
	}
}

func TestServeRequest(t *testing.T) {
	ds, _ := testServer(t)

	tr := testRequest()
	reply := ds.serveRequest(tr.Marshal(), "test")
	if reply[0] != wire.AuthOK {
		t.Fatal("Expect AuthOK reply, got status", reply[0])
	}
	if len(reply) != 1+2*wire.TicketLen {
		t.Fatal("Expect ticket pair reply, got", len(reply), "bytes")
	}

	tc, err := wire.OpenTicket(reply[1:1+wire.TicketLen], aliceKey[:])
	if err != nil {
		t.Fatal(err)
	}
	ts, err := wire.OpenTicket(reply[1+wire.TicketLen:], bubbaKey[:])
	if err != nil {
		t.Fatal(err)
	}
	if tc.Num != wire.AuthTc || ts.Num != wire.AuthTs {
		t.Errorf("Expect purpose tags {AuthTc, AuthTs}, got {%d, %d}",
			tc.Num, ts.Num)
	}
	if tc.Chal != tr.Chal || ts.Chal != tr.Chal {
		t.Error("Expect tickets bound to the request challenge")
	}
	if tc.CUID != "alice" || tc.SUID != "alice" {
		t.Errorf("Expect identity pair {alice, alice}, got {%s, %s}",
			tc.CUID, tc.SUID)
	}
	if tc.Key != ts.Key {
		t.Error("Expect both tickets to carry the same session key")
	}
}

func TestServeRequestUnknownPrincipals(t *testing.T) {
	ds, _ := testServer(t)

	tr := testRequest()
	tr.UID = "mallory"
	tr.HostID = "mallory"
	reply := ds.serveRequest(tr.Marshal(), "test")
	if reply[0] != wire.AuthErr {
		t.Fatal("Expect AuthErr for unknown client, got status", reply[0])
	}
	if len(reply) != 1+wire.ErrMsgLen {
		t.Fatal("Expect fixed-size error reply, got", len(reply), "bytes")
	}
	if !bytes.HasPrefix(reply[1:], []byte("unknown client")) {
		t.Error("Expect an unknown client message")
	}

	tr = testRequest()
	tr.AuthID = "nosuch"
	reply = ds.serveRequest(tr.Marshal(), "test")
	if reply[0] != wire.AuthErr {
		t.Fatal("Expect AuthErr for unknown server, got status", reply[0])
	}
}

func TestServeRequestBadType(t *testing.T) {
	ds, _ := testServer(t)

	tr := testRequest()
	tr.Type = wire.AuthTs
	reply := ds.serveRequest(tr.Marshal(), "test")
	if reply[0] != wire.AuthErr {
		t.Fatal("Expect AuthErr for bad request type, got status", reply[0])
	}
}

func TestEndToEndHandshake(t *testing.T) {
	ds, addr := testServer(t)
	ds.Run(addr)
	defer ds.Shutdown()

	store := testDirectory()
	tickets := NewClient(addr.Address)

	c, err := protocol.NewSession(protocol.P9SK1,
		keystore.Attrs{"role": "client"}, store, tickets)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	s, err := protocol.NewSession(protocol.P9SK1, keystore.Attrs{
		"role": "server",
		"user": "bubba",
		"dom":  "example.com",
	}, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	relay := func(from, to *protocol.Session, size int) {
		t.Helper()
		buf := make([]byte, size)
		if _, err := from.Read(buf); err != nil {
			t.Fatal("Read failed:", err)
		}
		if _, err := to.Write(buf); err != nil {
			t.Fatal("Write failed:", err)
		}
	}
	relay(c, s, wire.ChalLen)
	relay(s, c, wire.TickreqLen)
	relay(c, s, wire.TicketLen+wire.AuthentLen)
	relay(s, c, wire.AuthentLen)

	cr, sr := c.Result(), s.Result()
	if cr == nil || sr == nil {
		t.Fatal("Expect results on both sides")
	}
	if !bytes.Equal(cr.Secret, sr.Secret) {
		t.Error("Expect both sides to derive the same secret")
	}
	if cr.ClientUID != "alice" || sr.ClientUID != "alice" {
		t.Error("Expect authenticated client identity alice")
	}
}

func TestConfigReloadUpdatesTimeout(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	addr := &application.ServerAddress{
		Address: "unix://" + filepath.Join(dir, "authsrv.sock"),
	}
	logger := &application.LoggerConfig{Environment: "development"}

	saved := NewConfig(file, "toml", addr, "", logger)
	saved.ConnTimeout = 7
	if err := saved.Save(); err != nil {
		t.Fatal("Cannot save config:", err)
	}

	// the running daemon starts from its in-memory config and only
	// picks the file back up on reload
	ds := NewServer(NewConfig(file, "toml", addr, "", logger), testDirectory())
	if ds.connTimeout() != defaultConnTimeout {
		t.Fatal("Expect default timeout before reload, got", ds.connTimeout())
	}
	ds.updateConfig()
	if ds.connTimeout() != 7*time.Second {
		t.Error("Expect 7s timeout after reload, got", ds.connTimeout())
	}

	// the reload goroutine must wind down with the daemon
	ds.ConfigHotReload()
	if err := ds.Shutdown(); err != nil {
		t.Fatal("Shutdown failed:", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	addr := &application.ServerAddress{Address: "tcp://127.0.0.1:5658"}
	conf := NewConfig(file, "toml", addr, "keys.db",
		&application.LoggerConfig{Environment: "production"})
	if err := conf.Save(); err != nil {
		t.Fatal("Cannot save config:", err)
	}

	loaded := new(Config)
	if err := loaded.Load(file, "toml"); err != nil {
		t.Fatal("Cannot load config:", err)
	}
	if loaded.ListenAddress.Address != addr.Address {
		t.Errorf("Expect address %s, got %s",
			addr.Address, loaded.ListenAddress.Address)
	}
	if loaded.DatabasePath != "keys.db" {
		t.Error("Expect database path keys.db, got", loaded.DatabasePath)
	}
	if loaded.Logger.Environment != "production" {
		t.Error("Expect production logger environment")
	}
}
