// Package keystore resolves principal identities to secret key
// records for the p9auth handshake. A record is acquired with
// exclusive ownership for the lifetime of one session and must be
// released exactly once when the session closes.
package keystore

import (
	"errors"
	"sync"

	"github.com/vimanuelt/p9sk1/wire"
)

// Recognized values of the "role" attribute.
const (
	RoleClient = "client"
	RoleServer = "server"
)

var (
	// ErrKeyNotFound indicates that no record matches the requested
	// role, user and domain.
	ErrKeyNotFound = errors.New("keystore: no matching key")

	// ErrKeyInUse indicates that the matching record is owned by
	// another session.
	ErrKeyInUse = errors.New("keystore: key already acquired")

	// ErrNotAcquired indicates a release of a record that is not
	// currently owned.
	ErrNotAcquired = errors.New("keystore: key not acquired")
)

// Attrs is a caller-supplied attribute set, such as the one handed to
// the protocol engine at session initialization. Looking up an absent
// attribute yields the empty string.
type Attrs map[string]string

// Get returns the value of the named attribute.
func (a Attrs) Get(name string) string {
	return a[name]
}

// A Key is a secret key record bound to a principal. Secret is the
// 56-bit DES key shared with the ticket service for that principal.
type Key struct {
	User   string
	Dom    string
	Role   string
	Secret [wire.DESKeyLen]byte
}

// A Store resolves identities to key records.
//
// Acquire resolves role, user and dom to a record and hands it to the
// caller with exclusive ownership; an empty user matches any record
// with the given role and domain. The prompt argument is a credential
// prompt template of the form "user? !password?": stores backed by a
// human may use it to ask for a secret when the lookup misses, other
// stores ignore it. Release returns ownership of an acquired record.
type Store interface {
	Acquire(role, user, dom, prompt string) (*Key, error)
	Release(k *Key) error
}

// A MemStore is an in-memory Store, used by tests and by processes
// that load their few keys at startup.
type MemStore struct {
	mu   sync.Mutex
	keys []*memKey
}

type memKey struct {
	key   Key
	inUse bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Add registers a key record with the store.
func (st *MemStore) Add(k Key) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.keys = append(st.keys, &memKey{key: k})
}

// Acquire implements Store.
func (st *MemStore) Acquire(role, user, dom, prompt string) (*Key, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	found := false
	for _, mk := range st.keys {
		if mk.key.Role != role || mk.key.Dom != dom {
			continue
		}
		if user != "" && mk.key.User != user {
			continue
		}
		found = true
		if mk.inUse {
			continue
		}
		mk.inUse = true
		k := mk.key
		return &k, nil
	}
	if found {
		return nil, ErrKeyInUse
	}
	return nil, ErrKeyNotFound
}

// Lookup reads a key record without taking ownership.
func (st *MemStore) Lookup(role, user, dom string) (*Key, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, mk := range st.keys {
		if mk.key.Role == role && mk.key.Dom == dom && mk.key.User == user {
			k := mk.key
			return &k, nil
		}
	}
	return nil, ErrKeyNotFound
}

// Release implements Store.
func (st *MemStore) Release(k *Key) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, mk := range st.keys {
		if mk.key == *k && mk.inUse {
			mk.inUse = false
			return nil
		}
	}
	return ErrNotAcquired
}
