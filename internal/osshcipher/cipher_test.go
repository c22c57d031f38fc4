package osshcipher

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keyLen  int
		ivLen   int
		blockSz int
	}{
		{"none", 0, 0, 8},
		{"3des-cbc", 24, 8, 8},
		{"aes128-cbc", 16, 16, 16},
		{"aes192-cbc", 24, 16, 16},
		{"aes256-cbc", 32, 16, 16},
		{"aes128-ctr", 16, 16, 16},
		{"aes192-ctr", 24, 16, 16},
		{"aes256-ctr", 32, 16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Lookup(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if s.KeyLen != tt.keyLen || s.IVLen != tt.ivLen || s.BlockSize != tt.blockSz {
				t.Fatalf("Lookup(%q) = %+v", tt.name, s)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()

	if _, err := Lookup("rot13-cbc"); !errors.Is(err, ErrUnknownCipher) {
		t.Fatalf("Lookup error = %v, want ErrUnknownCipher", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"3des-cbc", "aes128-cbc", "aes256-cbc", "aes128-ctr", "aes256-ctr"} {
		t.Run(name, func(t *testing.T) {
			s, err := Lookup(name)
			if err != nil {
				t.Fatal(err)
			}
			key := make([]byte, s.KeyLen)
			iv := make([]byte, s.IVLen)
			if _, err := rand.Read(key); err != nil {
				t.Fatal(err)
			}
			if _, err := rand.Read(iv); err != nil {
				t.Fatal(err)
			}
			plain := make([]byte, s.BlockSize*4)
			if _, err := rand.Read(plain); err != nil {
				t.Fatal(err)
			}

			enc, err := s.Encrypt(key, iv, plain)
			if err != nil {
				t.Fatal(err)
			}
			if bytes.Equal(enc, plain) {
				t.Fatal("ciphertext equals plaintext")
			}
			dec, err := s.Decrypt(key, iv, enc)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(dec, plain) {
				t.Fatal("round trip mismatch")
			}
		})
	}
}

func TestBadKeyIVLengths(t *testing.T) {
	t.Parallel()

	s, err := Lookup("aes256-ctr")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Decrypt(make([]byte, 16), make([]byte, 16), make([]byte, 16)); !errors.Is(err, ErrKeyIVSize) {
		t.Fatalf("short key error = %v, want ErrKeyIVSize", err)
	}
	if _, err := s.Decrypt(make([]byte, 32), make([]byte, 8), make([]byte, 16)); !errors.Is(err, ErrKeyIVSize) {
		t.Fatalf("short iv error = %v, want ErrKeyIVSize", err)
	}
}

func TestCBCPartialBlock(t *testing.T) {
	t.Parallel()

	s, err := Lookup("aes128-cbc")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Decrypt(make([]byte, 16), make([]byte, 16), make([]byte, 15)); !errors.Is(err, ErrPartialBlock) {
		t.Fatalf("partial block error = %v, want ErrPartialBlock", err)
	}
}

func TestBcryptKDF(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	key1, err := BcryptKDF([]byte("hunter2"), salt, 16, 48)
	if err != nil {
		t.Fatal(err)
	}
	if len(key1) != 48 {
		t.Fatalf("key length = %d, want 48", len(key1))
	}
	key2, err := BcryptKDF([]byte("hunter2"), salt, 16, 48)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(key1, key2) {
		t.Fatal("bcrypt kdf not deterministic")
	}
	key3, err := BcryptKDF([]byte("hunter1"), salt, 16, 48)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(key1, key3) {
		t.Fatal("different passphrases derived the same key")
	}
}

func TestBcryptKDFBadParams(t *testing.T) {
	t.Parallel()

	if _, err := BcryptKDF([]byte("x"), nil, 16, 48); !errors.Is(err, ErrBadKDFParams) {
		t.Fatalf("empty salt error = %v, want ErrBadKDFParams", err)
	}
	if _, err := BcryptKDF([]byte("x"), []byte("salt"), 0, 48); !errors.Is(err, ErrBadKDFParams) {
		t.Fatalf("zero rounds error = %v, want ErrBadKDFParams", err)
	}
}
