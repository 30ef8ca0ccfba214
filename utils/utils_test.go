package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileRefusesToClobber(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "out")
	if err := WriteFile(file, []byte("first"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(file, []byte("second"), 0600); err == nil {
		t.Fatal("Expect an error when the file already exists")
	}
	buf, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "first" {
		t.Error("Expect the original contents, got", string(buf))
	}
}

func TestResolvePath(t *testing.T) {
	got := ResolvePath("keys.db", "/etc/p9authd/config.toml")
	if got != "/etc/p9authd/keys.db" {
		t.Error("Expect /etc/p9authd/keys.db, got", got)
	}
	got = ResolvePath("/var/keys.db", "/etc/p9authd/config.toml")
	if got != "/var/keys.db" {
		t.Error("Expect /var/keys.db, got", got)
	}
}
