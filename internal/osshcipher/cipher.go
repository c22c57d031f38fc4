// Package osshcipher selects and runs the symmetric ciphers and the
// passphrase KDF negotiated by the openssh-key-v1 container. The container
// codec only names an algorithm and hands over the derived key and IV; all
// actual cipher work happens here, on top of the standard crypto providers.
package osshcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"errors"
	"fmt"
)

var (
	// ErrUnknownCipher is returned when a cipher name is not in the
	// supported set.
	ErrUnknownCipher = errors.New("osshcipher: unknown cipher name")

	// ErrKeyIVSize is returned when the supplied key or IV does not match
	// the cipher's required lengths.
	ErrKeyIVSize = errors.New("osshcipher: key or iv length mismatch")

	// ErrPartialBlock is returned by block-mode operations when the data
	// length is not a multiple of the cipher block size.
	ErrPartialBlock = errors.New("osshcipher: data is not a multiple of the block size")
)

// CipherNone is the container's name for an unencrypted payload.
const CipherNone = "none"

type cipherMode int

const (
	modeNone cipherMode = iota
	modeCBC
	modeCTR
)

// Spec describes one supported symmetric cipher.
type Spec struct {
	// Name is the canonical container name, e.g. "aes256-ctr".
	Name string
	// KeyLen and IVLen are the lengths the KDF must derive, in bytes.
	KeyLen, IVLen int
	// BlockSize is the padding granularity of the decrypted payload.
	BlockSize int

	mode cipherMode
}

// specs is the closed set of ciphers the container codec understands,
// in the order OpenSSH documents them.
var specs = []Spec{
	{Name: CipherNone, KeyLen: 0, IVLen: 0, BlockSize: 8, mode: modeNone},
	{Name: "3des-cbc", KeyLen: 24, IVLen: 8, BlockSize: 8, mode: modeCBC},
	{Name: "aes128-cbc", KeyLen: 16, IVLen: 16, BlockSize: 16, mode: modeCBC},
	{Name: "aes192-cbc", KeyLen: 24, IVLen: 16, BlockSize: 16, mode: modeCBC},
	{Name: "aes256-cbc", KeyLen: 32, IVLen: 16, BlockSize: 16, mode: modeCBC},
	{Name: "aes128-ctr", KeyLen: 16, IVLen: 16, BlockSize: 16, mode: modeCTR},
	{Name: "aes192-ctr", KeyLen: 24, IVLen: 16, BlockSize: 16, mode: modeCTR},
	{Name: "aes256-ctr", KeyLen: 32, IVLen: 16, BlockSize: 16, mode: modeCTR},
}

// Lookup resolves a container cipher name to its Spec.
func Lookup(name string) (Spec, error) {
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
}

// IsNone reports whether the spec is the unencrypted "none" cipher.
func (s Spec) IsNone() bool {
	return s.mode == modeNone
}

func (s Spec) newBlock(key []byte) (cipher.Block, error) {
	if s.Name == "3des-cbc" {
		return des.NewTripleDESCipher(key)
	}
	return aes.NewCipher(key)
}

func (s Spec) checkArgs(key, iv, data []byte) error {
	if len(key) != s.KeyLen || len(iv) != s.IVLen {
		return fmt.Errorf("%w: %s needs key %d and iv %d, got %d and %d",
			ErrKeyIVSize, s.Name, s.KeyLen, s.IVLen, len(key), len(iv))
	}
	if s.mode == modeCBC && len(data)%s.BlockSize != 0 {
		return fmt.Errorf("%w: %s got %d bytes", ErrPartialBlock, s.Name, len(data))
	}
	return nil
}

// Encrypt encrypts data in place semantics-free: it returns a fresh buffer
// and leaves data untouched. CBC modes require data padded to BlockSize.
func (s Spec) Encrypt(key, iv, data []byte) ([]byte, error) {
	return s.run(key, iv, data, true)
}

// Decrypt decrypts data into a fresh buffer. CBC modes require data to be a
// multiple of BlockSize.
func (s Spec) Decrypt(key, iv, data []byte) ([]byte, error) {
	return s.run(key, iv, data, false)
}

func (s Spec) run(key, iv, data []byte, encrypt bool) ([]byte, error) {
	if s.mode == modeNone {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	if err := s.checkArgs(key, iv, data); err != nil {
		return nil, err
	}
	block, err := s.newBlock(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyIVSize, err)
	}
	out := make([]byte, len(data))
	switch s.mode {
	case modeCBC:
		if encrypt {
			cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
		} else {
			cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
		}
	case modeCTR:
		cipher.NewCTR(block, iv).XORKeyStream(out, data)
	}
	return out, nil
}
