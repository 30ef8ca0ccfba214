// DES primitives of the p9sk handshake: 56-to-64-bit key expansion,
// the overlapping-block cipher chain used to seal tickets and
// authenticators, and the password-to-key folding.

package wire

import (
	"crypto/cipher"
	"crypto/des"
)

// DES56to64 expands a 7-byte, 56-bit DES key into the classic 8-byte
// form, leaving the low bit of every byte free for parity. The engine
// also uses this expansion to derive the 8-byte shared secret from a
// ticket's session key.
func DES56to64(k56 []byte) []byte {
	if len(k56) != DESKeyLen {
		panic("wire: bad DES key length")
	}
	hi := uint32(k56[0])<<24 | uint32(k56[1])<<16 | uint32(k56[2])<<8 | uint32(k56[3])
	lo := uint32(k56[4])<<24 | uint32(k56[5])<<16 | uint32(k56[6])<<8
	k64 := make([]byte, 8)
	k64[0] = byte((hi >> 25) << 1)
	k64[1] = byte((hi >> 18) << 1)
	k64[2] = byte((hi >> 11) << 1)
	k64[3] = byte((hi >> 4) << 1)
	k64[4] = byte(((hi << 3) | (lo >> 29)) << 1)
	k64[5] = byte((lo >> 22) << 1)
	k64[6] = byte((lo >> 15) << 1)
	k64[7] = byte((lo >> 8) << 1)
	return k64
}

func newCipher(key []byte) cipher.Block {
	block, err := des.NewCipher(DES56to64(key))
	if err != nil {
		panic(err)
	}
	return block
}

// encryptChain enciphers buf in place with successive 8-byte DES
// blocks that overlap by one byte, so every byte of the message
// depends on every earlier byte. Messages shorter than one block are
// left untouched.
func encryptChain(key, buf []byte) {
	n := len(buf)
	if n < 8 {
		return
	}
	block := newCipher(key)
	n--
	r := n % 7
	n /= 7
	off := 0
	for i := 0; i < n; i++ {
		block.Encrypt(buf[off:off+8], buf[off:off+8])
		off += 7
	}
	if r > 0 {
		o := off - 7 + r
		block.Encrypt(buf[o:o+8], buf[o:o+8])
	}
}

// decryptChain reverses encryptChain in place.
func decryptChain(key, buf []byte) {
	n := len(buf)
	if n < 8 {
		return
	}
	block := newCipher(key)
	n--
	r := n % 7
	n /= 7
	off := n * 7
	if r > 0 {
		o := off - 7 + r
		block.Decrypt(buf[o:o+8], buf[o:o+8])
	}
	for i := 0; i < n; i++ {
		off -= 7
		block.Decrypt(buf[off:off+8], buf[off:off+8])
	}
}

// PassToKey folds a human-supplied secret into a 56-bit DES key,
// eight password bytes at a time, enciphering the running key into
// the next chunk. Passwords longer than ANameLen-1 bytes are
// truncated.
func PassToKey(pass string) [DESKeyLen]byte {
	var key [DESKeyLen]byte
	n := len(pass)
	if n > ANameLen-1 {
		n = ANameLen - 1
	}
	buf := make([]byte, ANameLen)
	for i := 0; i < 8; i++ {
		buf[i] = ' '
	}
	copy(buf, pass[:n])
	buf[n] = 0
	t := 0
	for {
		for i := 0; i < DESKeyLen; i++ {
			key[i] = (buf[t+i] >> uint(i)) + (buf[t+i+1] << uint(8-(i+1)))
		}
		if n <= 8 {
			return key
		}
		n -= 8
		t += 8
		if n < 8 {
			t -= 8 - n
			n = 8
		}
		encryptChain(key[:], buf[t:t+8])
	}
}
