package osshkeys

import (
	"bytes"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/LuaKT/osshkeys-go/internal/sshwire"
)

func newEd25519KeyPair(key ed25519.PrivateKey, comment string) (*KeyPair, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errorf(ErrInvalidKeySize, "ed25519 private key is %d bytes, want %d",
			len(key), ed25519.PrivateKeySize)
	}
	// The trailing half of the private key is the public key; reject keys
	// where the halves disagree instead of silently recomputing.
	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !bytes.Equal(derived, key) {
		return nil, errorf(ErrInvalidKey, "ed25519 private key does not embed its public key")
	}
	return &KeyPair{keyType: KeyTypeEd25519, ed25519: key, comment: comment}, nil
}

// encodeEd25519Private writes the container private fields: the 32-byte
// public key, then the 64-byte private key (seed followed by public key).
func encodeEd25519Private(w *sshwire.Writer, key ed25519.PrivateKey) {
	w.String(key[ed25519.SeedSize:])
	w.String(key)
}

// decodeEd25519Private reads the container private fields and rebuilds the
// key, checking agreement with the embedded public key.
func decodeEd25519Private(r *sshwire.Reader, pub ed25519.PublicKey) (ed25519.PrivateKey, error) {
	pubField, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	privField, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}

	if len(pubField) != ed25519.PublicKeySize {
		return nil, errorf(ErrInvalidKeySize, "ed25519 public field is %d bytes, want %d",
			len(pubField), ed25519.PublicKeySize)
	}
	if len(privField) != ed25519.PrivateKeySize {
		return nil, errorf(ErrInvalidKeySize, "ed25519 private field is %d bytes, want %d",
			len(privField), ed25519.PrivateKeySize)
	}
	if !bytes.Equal(pubField, pub) {
		return nil, errorf(ErrInvalidKeyFormat, "private section does not match embedded ed25519 public key")
	}
	if !bytes.Equal(privField[ed25519.SeedSize:], pubField) {
		return nil, errorf(ErrInvalidKey, "ed25519 private key does not embed its public key")
	}

	key := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(key, privField)
	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !bytes.Equal(derived, key) {
		return nil, errorf(ErrInvalidKey, "ed25519 seed does not derive the embedded public key")
	}
	return key, nil
}
