// A Store decorator that asks a human for a secret when a lookup
// misses and the protocol supplies a credential prompt template.

package keystore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/vimanuelt/p9sk1/wire"
)

// A PromptStore wraps another Store. When the wrapped store has no
// matching record and the caller supplied a prompt template such as
// "user? !password?", the store asks on In for the listed attributes.
// A field marked with '!' is read without echo when In is the
// controlling terminal, and folded into a DES key; the resulting
// record is owned by the PromptStore itself, so releasing it does not
// touch the wrapped store.
type PromptStore struct {
	Store

	// In and Out are the prompt streams, the terminal by default.
	In  io.Reader
	Out io.Writer

	mu       sync.Mutex
	reader   *bufio.Reader
	prompted []*Key
}

// NewPromptStore wraps st with terminal prompting.
func NewPromptStore(st Store) *PromptStore {
	return &PromptStore{Store: st, In: os.Stdin, Out: os.Stderr}
}

// Acquire implements Store.
func (ps *PromptStore) Acquire(role, user, dom, prompt string) (*Key, error) {
	k, err := ps.Store.Acquire(role, user, dom, prompt)
	if err != ErrKeyNotFound || prompt == "" {
		return k, err
	}
	k, err = ps.ask(role, user, dom, prompt)
	if err != nil {
		return nil, err
	}
	ps.mu.Lock()
	ps.prompted = append(ps.prompted, k)
	ps.mu.Unlock()
	return k, nil
}

// Release implements Store.
func (ps *PromptStore) Release(k *Key) error {
	ps.mu.Lock()
	for i, pk := range ps.prompted {
		if pk == k {
			ps.prompted = append(ps.prompted[:i], ps.prompted[i+1:]...)
			ps.mu.Unlock()
			return nil
		}
	}
	ps.mu.Unlock()
	return ps.Store.Release(k)
}

func (ps *PromptStore) ask(role, user, dom, prompt string) (*Key, error) {
	k := &Key{User: user, Dom: dom, Role: role}
	for _, field := range strings.Fields(prompt) {
		name := strings.TrimSuffix(strings.TrimPrefix(field, "!"), "?")
		secret := strings.HasPrefix(field, "!")
		fmt.Fprintf(ps.Out, "%s[%s@%s]: ", name, role, dom)
		if secret {
			pass, err := ps.readSecret()
			if err != nil {
				return nil, err
			}
			k.Secret = wire.PassToKey(pass)
			continue
		}
		line, err := ps.readLine()
		if err != nil {
			return nil, err
		}
		if name == "user" {
			k.User = line
		}
	}
	return k, nil
}

// readSecret reads a secret field, without echo when In is the
// controlling terminal.
func (ps *PromptStore) readSecret() (string, error) {
	if f, ok := ps.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		buf, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(ps.Out)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}
	return ps.readLine()
}

func (ps *PromptStore) readLine() (string, error) {
	if ps.reader == nil {
		ps.reader = bufio.NewReader(ps.In)
	}
	line, err := ps.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
