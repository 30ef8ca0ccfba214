package keystore

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vimanuelt/p9sk1/wire"
)

func TestPromptStorePassthrough(t *testing.T) {
	st := NewMemStore()
	st.Add(testKey("alice", "example.com", RoleClient))
	ps := NewPromptStore(st)
	var out bytes.Buffer
	ps.Out = &out

	// a hit on the wrapped store never prompts
	k, err := ps.Acquire(RoleClient, "alice", "example.com", "user? !password?")
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Error("Expect no prompt for a resolved key, got", out.String())
	}
	if err := ps.Release(k); err != nil {
		t.Fatal(err)
	}

	// a miss without a prompt template falls through unchanged
	if _, err := ps.Acquire(RoleClient, "bob", "example.com", ""); err != ErrKeyNotFound {
		t.Error("Expect", ErrKeyNotFound, "got", err)
	}
}

func TestPromptStoreAsk(t *testing.T) {
	ps := NewPromptStore(NewMemStore())
	var out bytes.Buffer
	ps.In = strings.NewReader("gopher\ncorrect horse\n")
	ps.Out = &out

	k, err := ps.Acquire(RoleClient, "", "example.com", "user? !password?")
	if err != nil {
		t.Fatal(err)
	}
	if k.User != "gopher" {
		t.Error("Expect prompted user gopher, got", k.User)
	}
	if k.Secret != wire.PassToKey("correct horse") {
		t.Error("Expect secret folded from the prompted password")
	}
	if !strings.Contains(out.String(), "user[client@example.com]") ||
		!strings.Contains(out.String(), "password[client@example.com]") {
		t.Error("Expect both template fields prompted, got", out.String())
	}

	// a prompted key is owned by the decorator, not the wrapped store
	if err := ps.Release(k); err != nil {
		t.Fatal("Expect release of a prompted key to succeed, got", err)
	}
	if err := ps.Release(k); err != ErrNotAcquired {
		t.Error("Expect second release to fall through to the wrapped store, got", err)
	}
}
