package osshkeys

import (
	stded25519 "crypto/ed25519"
	"encoding/pem"
	"errors"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/LuaKT/osshkeys-go/internal/sshwire"
)

func TestOpenSSHRoundTrip(t *testing.T) {
	t.Parallel()
	keys := testKeys(t)

	ciphers := []struct {
		name       string
		passphrase []byte
		opts       []Option
	}{
		{"unencrypted", nil, nil},
		{"default cipher", []byte("hunter2"), nil},
		{"aes128-cbc", []byte("hunter2"), []Option{WithCipher("aes128-cbc")}},
		{"aes256-cbc", []byte("hunter2"), []Option{WithCipher("aes256-cbc")}},
		{"3des-cbc", []byte("hunter2"), []Option{WithCipher("3des-cbc")}},
	}

	for kt, shared := range keys {
		for _, tc := range ciphers {
			tc := tc
			t.Run(kt.String()+"/"+tc.name, func(t *testing.T) {
				t.Parallel()
				// Shallow copy so the shared fixture's comment is not
				// mutated under other parallel tests.
				kp := *shared
				kp.SetComment("test@example")
				data, err := kp.OpenSSHPEM(tc.passphrase, tc.opts...)
				if err != nil {
					t.Fatalf("OpenSSHPEM() error = %v", err)
				}

				got, err := ParseKeyPair(data, tc.passphrase)
				if err != nil {
					t.Fatalf("ParseKeyPair() error = %v", err)
				}
				assertKeyPairsEqual(t, &kp, got)
				if got.Comment() != "test@example" {
					t.Fatalf("comment = %q, want %q", got.Comment(), "test@example")
				}
			})
		}
	}
}

func TestOpenSSHWrongPassphrase(t *testing.T) {
	t.Parallel()
	kp := testKeys(t)[KeyTypeRSA]

	data, err := kp.OpenSSHPEM([]byte("correct"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ParseKeyPair(data, []byte("wrong"))
	if !errors.Is(err, ErrIncorrectPassphrase) {
		t.Fatalf("ParseKeyPair() error = %v, want ErrIncorrectPassphrase", err)
	}
}

func TestHunter2Scenario(t *testing.T) {
	t.Parallel()
	kp := testKeys(t)[KeyTypeRSA]

	data, err := kp.OpenSSHPEM([]byte("hunter2"), WithCipher("aes256-ctr"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseKeyPair(data, []byte("hunter2"))
	if err != nil {
		t.Fatalf("decode with correct passphrase: %v", err)
	}
	if got.rsa.N.Cmp(kp.rsa.N) != 0 || got.rsa.E != kp.rsa.E || got.rsa.D.Cmp(kp.rsa.D) != 0 {
		t.Fatal("recovered rsa key differs")
	}

	if _, err := ParseKeyPair(data, []byte("hunter1")); !errors.Is(err, ErrIncorrectPassphrase) {
		t.Fatalf("decode with wrong passphrase: error = %v, want ErrIncorrectPassphrase", err)
	}
}

func TestOpenSSHUnencryptedWithPassphrase(t *testing.T) {
	t.Parallel()
	kp := testKeys(t)[KeyTypeEd25519]

	data, err := kp.OpenSSHPEM(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseKeyPair(data, []byte("anything")); !errors.Is(err, ErrIncorrectPassphrase) {
		t.Fatalf("ParseKeyPair() error = %v, want ErrIncorrectPassphrase", err)
	}
}

func TestOpenSSHEncryptedWithoutPassphrase(t *testing.T) {
	t.Parallel()
	kp := testKeys(t)[KeyTypeEd25519]

	data, err := kp.OpenSSHPEM([]byte("hunter2"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseKeyPair(data, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ParseKeyPair() error = %v, want ErrInvalidArgument", err)
	}
}

// containerBlob encodes kp unencrypted and returns the raw container bytes
// inside the armor.
func containerBlob(t *testing.T, kp *KeyPair) []byte {
	t.Helper()
	data, err := kp.OpenSSHPEM(nil)
	if err != nil {
		t.Fatal(err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		t.Fatal("no pem block in encoded key")
	}
	return block.Bytes
}

// containerParts is a decoded outer container, for structural tampering.
type containerParts struct {
	cipherName string
	kdfName    string
	kdfOpts    []byte
	numKeys    uint32
	pubBlob    []byte
	payload    []byte
}

func splitContainer(t *testing.T, blob []byte) containerParts {
	t.Helper()
	r := sshwire.NewReader(blob)
	if _, err := r.Bytes(len(opensshMagic)); err != nil {
		t.Fatal(err)
	}
	var p containerParts
	read := func(dst *[]byte) {
		b, err := r.String()
		if err != nil {
			t.Fatal(err)
		}
		*dst = b
	}
	var cipherName, kdfName []byte
	read(&cipherName)
	read(&kdfName)
	read(&p.kdfOpts)
	n, err := r.Uint32()
	if err != nil {
		t.Fatal(err)
	}
	p.numKeys = n
	read(&p.pubBlob)
	read(&p.payload)
	p.cipherName = string(cipherName)
	p.kdfName = string(kdfName)
	return p
}

func buildContainer(p containerParts) []byte {
	var w sshwire.Writer
	w.Raw([]byte(opensshMagic))
	w.String([]byte(p.cipherName))
	w.String([]byte(p.kdfName))
	w.String(p.kdfOpts)
	w.Uint32(p.numKeys)
	w.String(p.pubBlob)
	w.String(p.payload)
	return w.Bytes()
}

func TestOpenSSHBadMagic(t *testing.T) {
	t.Parallel()
	blob := containerBlob(t, testKeys(t)[KeyTypeEd25519])

	bad := append([]byte(nil), blob...)
	bad[0] ^= 0xff
	if _, err := decodeOpenSSHPrivateKey(bad, nil); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("decode error = %v, want ErrInvalidKeyFormat", err)
	}

	if _, err := decodeOpenSSHPrivateKey([]byte("short"), nil); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("decode of short input error = %v, want ErrInvalidKeyFormat", err)
	}
}

func TestOpenSSHKeyCount(t *testing.T) {
	t.Parallel()
	parts := splitContainer(t, containerBlob(t, testKeys(t)[KeyTypeEd25519]))

	for _, n := range []uint32{0, 2, 100} {
		parts.numKeys = n
		if _, err := decodeOpenSSHPrivateKey(buildContainer(parts), nil); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("numKeys=%d: decode error = %v, want ErrInvalidFormat", n, err)
		}
	}
}

func TestOpenSSHCipherKDFMismatch(t *testing.T) {
	t.Parallel()
	parts := splitContainer(t, containerBlob(t, testKeys(t)[KeyTypeEd25519]))

	// Unencrypted container that negotiates a KDF anyway.
	bad := parts
	bad.kdfName = "bcrypt"
	if _, err := decodeOpenSSHPrivateKey(buildContainer(bad), nil); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("none/bcrypt: decode error = %v, want ErrInvalidKeyFormat", err)
	}

	bad = parts
	bad.kdfOpts = []byte("leftover")
	if _, err := decodeOpenSSHPrivateKey(buildContainer(bad), nil); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("none with kdf options: decode error = %v, want ErrInvalidKeyFormat", err)
	}

	// Encrypted container whose kdf name was rewritten. A kdf of "none"
	// under a real cipher is a grammar violation, not an unknown kdf.
	data, err := testKeys(t)[KeyTypeEd25519].OpenSSHPEM([]byte("hunter2"))
	if err != nil {
		t.Fatal(err)
	}
	block, _ := pem.Decode(data)
	enc := splitContainer(t, block.Bytes)

	bad = enc
	bad.kdfName = "none"
	if _, err := decodeOpenSSHPrivateKey(buildContainer(bad), []byte("hunter2")); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("aes256-ctr/none: decode error = %v, want ErrInvalidKeyFormat", err)
	}

	bad = enc
	bad.kdfName = "argon2"
	if _, err := decodeOpenSSHPrivateKey(buildContainer(bad), []byte("hunter2")); !errors.Is(err, ErrUnsupportedCipher) {
		t.Fatalf("aes256-ctr/argon2: decode error = %v, want ErrUnsupportedCipher", err)
	}
}

func TestOpenSSHUnknownCipher(t *testing.T) {
	t.Parallel()
	parts := splitContainer(t, containerBlob(t, testKeys(t)[KeyTypeEd25519]))
	parts.cipherName = "chacha99-cbc"

	if _, err := decodeOpenSSHPrivateKey(buildContainer(parts), []byte("pass")); !errors.Is(err, ErrUnsupportedCipher) {
		t.Fatalf("decode error = %v, want ErrUnsupportedCipher", err)
	}
}

func TestOpenSSHUnknownKeyType(t *testing.T) {
	t.Parallel()
	parts := splitContainer(t, containerBlob(t, testKeys(t)[KeyTypeEd25519]))

	var fake sshwire.Writer
	fake.String([]byte("ssh-quantum"))
	fake.String([]byte("blobblob"))
	parts.pubBlob = fake.Bytes()

	if _, err := decodeOpenSSHPrivateKey(buildContainer(parts), nil); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("decode error = %v, want ErrUnsupportedType", err)
	}
}

func TestOpenSSHUnknownCurve(t *testing.T) {
	t.Parallel()
	parts := splitContainer(t, containerBlob(t, testKeys(t)[KeyTypeEd25519]))

	var fake sshwire.Writer
	fake.String([]byte("ecdsa-sha2-nistp224"))
	fake.String([]byte("nistp224"))
	parts.pubBlob = fake.Bytes()

	if _, err := decodeOpenSSHPrivateKey(buildContainer(parts), nil); !errors.Is(err, ErrUnsupportedCurve) {
		t.Fatalf("decode error = %v, want ErrUnsupportedCurve", err)
	}
}

func TestOpenSSHPaddingTamper(t *testing.T) {
	t.Parallel()
	blob := containerBlob(t, testKeys(t)[KeyTypeEd25519])

	// The payload is the container's last field, so its final padding byte
	// is the container's final byte.
	bad := append([]byte(nil), blob...)
	bad[len(bad)-1] ^= 0xff
	if _, err := decodeOpenSSHPrivateKey(bad, nil); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("decode error = %v, want ErrInvalidKeyFormat", err)
	}
}

func TestOpenSSHTrailingGarbage(t *testing.T) {
	t.Parallel()
	blob := containerBlob(t, testKeys(t)[KeyTypeEd25519])

	bad := append(append([]byte(nil), blob...), 0x42)
	if _, err := decodeOpenSSHPrivateKey(bad, nil); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("decode error = %v, want ErrInvalidKeyFormat", err)
	}
}

func TestOpenSSHTruncation(t *testing.T) {
	t.Parallel()
	blob := containerBlob(t, testKeys(t)[KeyTypeEd25519])

	// Every truncation point must produce a classified error, never a
	// panic and never a key.
	for cut := 0; cut < len(blob); cut++ {
		kp, err := decodeOpenSSHPrivateKey(blob[:cut], nil)
		if err == nil {
			t.Fatalf("truncation at %d: decode succeeded", cut)
		}
		if kp != nil {
			t.Fatalf("truncation at %d: partial key returned alongside error", cut)
		}
		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("truncation at %d: unclassified error %v", cut, err)
		}
	}
}

func TestOpenSSHChecksumMismatch(t *testing.T) {
	t.Parallel()
	parts := splitContainer(t, containerBlob(t, testKeys(t)[KeyTypeEd25519]))

	// Flip a bit in the first checksum integer of the plaintext payload.
	payload := append([]byte(nil), parts.payload...)
	payload[0] ^= 0x01
	parts.payload = payload

	if _, err := decodeOpenSSHPrivateKey(buildContainer(parts), nil); !errors.Is(err, ErrIncorrectPassphrase) {
		t.Fatalf("decode error = %v, want ErrIncorrectPassphrase", err)
	}
}

func TestOpenSSHInteropWithXCrypto(t *testing.T) {
	t.Parallel()
	keys := testKeys(t)

	// x/crypto/ssh has no ssh-dss support in the openssh-key-v1 container.
	for _, kt := range []KeyType{KeyTypeRSA, KeyTypeECDSA, KeyTypeEd25519} {
		kt := kt
		t.Run("ours-to-theirs/"+kt.String(), func(t *testing.T) {
			t.Parallel()
			data, err := keys[kt].OpenSSHPEM(nil)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := ssh.ParseRawPrivateKey(data); err != nil {
				t.Fatalf("x/crypto/ssh rejected our container: %v", err)
			}
		})
	}

	t.Run("theirs-to-ours/ed25519", func(t *testing.T) {
		t.Parallel()
		kp := keys[KeyTypeEd25519]
		block, err := ssh.MarshalPrivateKey(stded25519.PrivateKey(kp.ed25519), "interop@test")
		if err != nil {
			t.Fatal(err)
		}
		got, err := ParseKeyPair(pem.EncodeToMemory(block), nil)
		if err != nil {
			t.Fatalf("ParseKeyPair() error = %v", err)
		}
		assertKeyPairsEqual(t, kp, got)
		if got.Comment() != "interop@test" {
			t.Fatalf("comment = %q", got.Comment())
		}
	})

	t.Run("theirs-to-ours/rsa", func(t *testing.T) {
		t.Parallel()
		kp := keys[KeyTypeRSA]
		block, err := ssh.MarshalPrivateKey(kp.rsa, "")
		if err != nil {
			t.Fatal(err)
		}
		got, err := ParseKeyPair(pem.EncodeToMemory(block), nil)
		if err != nil {
			t.Fatalf("ParseKeyPair() error = %v", err)
		}
		assertKeyPairsEqual(t, kp, got)
	})
}

func TestOpenSSHEncryptedIsNotPlaintext(t *testing.T) {
	t.Parallel()
	kp := testKeys(t)[KeyTypeEd25519]

	parts := splitContainer(t, containerBlob(t, kp))
	plainPayload := parts.payload

	data, err := kp.OpenSSHPEM([]byte("hunter2"))
	if err != nil {
		t.Fatal(err)
	}
	block, _ := pem.Decode(data)
	encParts := splitContainer(t, block.Bytes)

	if encParts.cipherName != DefaultCipher || encParts.kdfName != "bcrypt" {
		t.Fatalf("negotiated %s/%s, want %s/bcrypt", encParts.cipherName, encParts.kdfName, DefaultCipher)
	}
	// The private section must not appear in the clear. The payloads differ
	// in checkints too, so compare the key bytes region by searching for
	// the seed.
	seed := kp.ed25519[:32]
	if containsSubslice(encParts.payload, seed) {
		t.Fatal("encrypted payload leaks the private seed")
	}
	if !containsSubslice(plainPayload, seed) {
		t.Fatal("sanity: plaintext payload should contain the seed")
	}
}

func containsSubslice(haystack, needle []byte) bool {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
