package crypto

import (
	"bytes"
	"testing"
)

func TestDigest(t *testing.T) {
	d := Digest([]byte("message"))
	if len(d) != HashSizeByte {
		t.Fatal("Expect digest length", HashSizeByte, "got", len(d))
	}
	if !bytes.Equal(d, Digest([]byte("message"))) {
		t.Error("Expect deterministic digests")
	}
	if bytes.Equal(d, Digest([]byte("other"))) {
		t.Error("Expect different digests for different messages")
	}
}

func TestMakeRand(t *testing.T) {
	r1, err := MakeRand()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := MakeRand()
	if err != nil {
		t.Fatal(err)
	}
	if len(r1) != HashSizeByte {
		t.Fatal("Expect length", HashSizeByte, "got", len(r1))
	}
	if bytes.Equal(r1, r2) {
		t.Error("Expect two random values to differ")
	}
}
