// A persistent Store on LevelDB, used by the ticket-issuing server.

package keystore

import (
	"encoding/json"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const keyPrefix = "key/"

// A LevelDBStore is a Store backed by a LevelDB database. Records are
// stored JSON-encoded under "key/<role>/<dom>/<user>". Exclusive
// ownership is tracked in memory: it scopes to the process that mints
// tickets, not to the database file.
type LevelDBStore struct {
	db *leveldb.DB

	mu    sync.Mutex
	inUse map[string]bool
}

var _ Store = (*LevelDBStore)(nil)

// OpenLevelDB opens (creating if necessary) the key database at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db, inUse: make(map[string]bool)}, nil
}

// Close closes the underlying database.
func (st *LevelDBStore) Close() error {
	return st.db.Close()
}

func dbKey(role, dom, user string) string {
	return keyPrefix + role + "/" + dom + "/" + user
}

// Put stores (or replaces) a key record.
func (st *LevelDBStore) Put(k *Key) error {
	buf, err := json.Marshal(k)
	if err != nil {
		return err
	}
	return st.db.Put([]byte(dbKey(k.Role, k.Dom, k.User)), buf, nil)
}

// Acquire implements Store.
func (st *LevelDBStore) Acquire(role, user, dom, prompt string) (*Key, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if user != "" {
		return st.acquireLocked(dbKey(role, dom, user))
	}

	// wildcard user: take the first record for the role and domain
	// that is not already owned
	iter := st.db.NewIterator(util.BytesPrefix([]byte(dbKey(role, dom, ""))), nil)
	defer iter.Release()
	found := false
	for iter.Next() {
		found = true
		if st.inUse[string(iter.Key())] {
			continue
		}
		return st.acquireLocked(string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	if found {
		return nil, ErrKeyInUse
	}
	return nil, ErrKeyNotFound
}

func (st *LevelDBStore) acquireLocked(dbk string) (*Key, error) {
	buf, err := st.db.Get([]byte(dbk), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	if st.inUse[dbk] {
		return nil, ErrKeyInUse
	}
	k := new(Key)
	if err := json.Unmarshal(buf, k); err != nil {
		return nil, err
	}
	st.inUse[dbk] = true
	return k, nil
}

// Lookup reads a key record without taking ownership. The ticket
// service uses it: minting a ticket pair consults two records briefly
// and must not contend with sessions that hold keys for their whole
// lifetime.
func (st *LevelDBStore) Lookup(role, user, dom string) (*Key, error) {
	buf, err := st.db.Get([]byte(dbKey(role, dom, user)), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	k := new(Key)
	if err := json.Unmarshal(buf, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Release implements Store.
func (st *LevelDBStore) Release(k *Key) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	dbk := dbKey(k.Role, k.Dom, k.User)
	if !st.inUse[dbk] {
		return ErrNotAcquired
	}
	delete(st.inUse, dbk)
	return nil
}
