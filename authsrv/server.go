// Implements the ticket service daemon.

package authsrv

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/vimanuelt/p9sk1/application"
	"github.com/vimanuelt/p9sk1/crypto"
	"github.com/vimanuelt/p9sk1/keystore"
	"github.com/vimanuelt/p9sk1/wire"
)

// defaultConnTimeout bounds one ticket exchange when the config does
// not say otherwise.
const defaultConnTimeout = 5 * time.Second

// A KeyDirectory resolves principals to their long-term secrets
// without taking ownership, the way the ticket service consults its
// database. Both keystore.MemStore and keystore.LevelDBStore
// implement it.
type KeyDirectory interface {
	Lookup(role, user, dom string) (*keystore.Key, error)
}

// A Server is a running ticket service daemon. It answers each ticket
// request on its own connection and closes the connection after the
// reply.
type Server struct {
	*application.ServerBase
	dir KeyDirectory

	mu      sync.RWMutex
	timeout time.Duration
}

// NewServer constructs a ticket service daemon from its configuration
// and key directory.
func NewServer(conf *Config, dir KeyDirectory) *Server {
	return &Server{
		ServerBase: application.NewServerBase(conf.CommonConfig, "Listening"),
		dir:        dir,
		timeout:    timeoutFromConfig(conf),
	}
}

func timeoutFromConfig(conf *Config) time.Duration {
	if conf.ConnTimeout > 0 {
		return time.Duration(conf.ConnTimeout) * time.Second
	}
	return defaultConnTimeout
}

// Run starts accepting ticket requests at the configured address.
// It returns immediately; use Shutdown to stop the daemon.
func (ds *Server) Run(addr *application.ServerAddress) {
	ds.ListenAndHandle(addr, ds.handleConn)
}

// ConfigHotReload makes the daemon re-read its config file on
// SIGUSR2, picking up the reloadable settings without a restart.
func (ds *Server) ConfigHotReload() {
	ds.RunInBackground(func() {
		ds.HotReload(ds.updateConfig)
	})
}

func (ds *Server) updateConfig() {
	path, encoding := ds.ConfigInfo()
	conf := &Config{}
	if err := conf.Load(path, encoding); err != nil {
		ds.Logger().Error("Cannot reload config",
			"path", path, "error", err.Error())
		return
	}
	ds.mu.Lock()
	ds.timeout = timeoutFromConfig(conf)
	ds.mu.Unlock()
	ds.Logger().Info("Reloaded config", "path", path)
}

func (ds *Server) connTimeout() time.Duration {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.timeout
}

func (ds *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ds.connTimeout()))

	buf := make([]byte, wire.TickreqLen)
	if _, err := io.ReadFull(conn, buf); err != nil {
		ds.Logger().Error(err.Error(),
			"address", conn.RemoteAddr().String())
		return
	}

	reply := ds.serveRequest(buf, conn.RemoteAddr().String())
	if _, err := conn.Write(reply); err != nil {
		ds.Logger().Error(err.Error(),
			"address", conn.RemoteAddr().String())
	}
}

// serveRequest turns one marshalled ticket request into a marshalled
// reply, either AuthOK with the ticket pair or AuthErr with a message.
func (ds *Server) serveRequest(req []byte, remote string) []byte {
	tr, err := wire.UnmarshalTicketreq(req)
	if err != nil {
		return errReply("malformed ticket request")
	}
	if tr.Type != wire.AuthTreq {
		ds.Logger().Warn("Unacceptable request type",
			"type", tr.Type, "address", remote)
		return errReply("unknown request type")
	}

	ck, err := ds.dir.Lookup(keystore.RoleClient, tr.UID, tr.AuthDom)
	if err != nil {
		ds.Logger().Warn("Unknown client",
			"uid", tr.UID, "dom", tr.AuthDom, "address", remote)
		return errReply("unknown client " + tr.UID)
	}
	sk, err := ds.dir.Lookup(keystore.RoleServer, tr.AuthID, tr.AuthDom)
	if err != nil {
		ds.Logger().Warn("Unknown server",
			"authid", tr.AuthID, "dom", tr.AuthDom, "address", remote)
		return errReply("unknown server " + tr.AuthID)
	}

	var sessionKey [wire.DESKeyLen]byte
	r, err := crypto.MakeRand()
	if err != nil {
		ds.Logger().Error(err.Error())
		return errReply("cannot mint session key")
	}
	copy(sessionKey[:], r)

	tc := wire.Ticket{
		Num:  wire.AuthTc,
		Chal: tr.Chal,
		CUID: tr.UID,
		SUID: tr.UID,
		Key:  sessionKey,
	}
	ts := wire.Ticket{
		Num:  wire.AuthTs,
		Chal: tr.Chal,
		CUID: tr.UID,
		SUID: tr.UID,
		Key:  sessionKey,
	}

	ds.Logger().Info("Issued tickets",
		"uid", tr.UID, "authid", tr.AuthID, "dom", tr.AuthDom)

	reply := make([]byte, 0, 1+2*wire.TicketLen)
	reply = append(reply, wire.AuthOK)
	reply = append(reply, tc.Seal(ck.Secret[:])...)
	reply = append(reply, ts.Seal(sk.Secret[:])...)
	return reply
}

// errReply builds an AuthErr reply carrying msg in a NUL-padded
// fixed-size field.
func errReply(msg string) []byte {
	reply := make([]byte, 1+wire.ErrMsgLen)
	reply[0] = wire.AuthErr
	if len(msg) > wire.ErrMsgLen-1 {
		msg = msg[:wire.ErrMsgLen-1]
	}
	copy(reply[1:], msg)
	return reply
}
