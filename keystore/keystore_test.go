package keystore

import (
	"testing"

	"github.com/vimanuelt/p9sk1/wire"
)

func testKey(user, dom, role string) Key {
	return Key{
		User:   user,
		Dom:    dom,
		Role:   role,
		Secret: wire.PassToKey(user + " secret"),
	}
}

func TestMemStoreAcquireRelease(t *testing.T) {
	st := NewMemStore()
	st.Add(testKey("alice", "example.com", RoleClient))

	k, err := st.Acquire(RoleClient, "alice", "example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if k.User != "alice" || k.Dom != "example.com" {
		t.Error("Expect alice@example.com, got", k.User, k.Dom)
	}

	// second acquisition must be refused while the record is owned
	if _, err := st.Acquire(RoleClient, "alice", "example.com", ""); err != ErrKeyInUse {
		t.Error("Expect", ErrKeyInUse, "got", err)
	}

	if err := st.Release(k); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Acquire(RoleClient, "alice", "example.com", ""); err != nil {
		t.Error("Expect acquisition after release, got", err)
	}
}

func TestMemStoreWildcardUser(t *testing.T) {
	st := NewMemStore()
	st.Add(testKey("alice", "example.com", RoleClient))

	k, err := st.Acquire(RoleClient, "", "example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if k.User != "alice" {
		t.Error("Expect alice, got", k.User)
	}
}

func TestMemStoreNotFound(t *testing.T) {
	st := NewMemStore()
	if _, err := st.Acquire(RoleServer, "bob", "example.com", ""); err != ErrKeyNotFound {
		t.Error("Expect", ErrKeyNotFound, "got", err)
	}
	k := testKey("bob", "example.com", RoleServer)
	if err := st.Release(&k); err != ErrNotAcquired {
		t.Error("Expect", ErrNotAcquired, "got", err)
	}
}

func TestLevelDBStore(t *testing.T) {
	st, err := OpenLevelDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	want := testKey("alice", "example.com", RoleClient)
	if err := st.Put(&want); err != nil {
		t.Fatal(err)
	}

	k, err := st.Acquire(RoleClient, "alice", "example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if *k != want {
		t.Error("Expect", want, "got", *k)
	}
	if _, err := st.Acquire(RoleClient, "", "example.com", ""); err != ErrKeyInUse {
		t.Error("Expect", ErrKeyInUse, "got", err)
	}
	if err := st.Release(k); err != nil {
		t.Fatal(err)
	}

	// wildcard acquisition after release
	k, err = st.Acquire(RoleClient, "", "example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if k.User != "alice" {
		t.Error("Expect alice, got", k.User)
	}

	if _, err := st.Acquire(RoleServer, "", "example.com", ""); err != ErrKeyNotFound {
		t.Error("Expect", ErrKeyNotFound, "got", err)
	}
}
