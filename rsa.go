package osshkeys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"math/big"

	"github.com/LuaKT/osshkeys-go/internal/sshwire"
)

// RSAHash selects the hash an RSA key signs with, which in SSH terms is the
// difference between ssh-rsa, rsa-sha2-256 and rsa-sha2-512.
type RSAHash int

const (
	// RSAHashSHA1 signs with SHA-1 (signature name "ssh-rsa"). Legacy.
	RSAHashSHA1 RSAHash = iota + 1
	// RSAHashSHA256 signs with SHA-256 (signature name "rsa-sha2-256").
	RSAHashSHA256
	// RSAHashSHA512 signs with SHA-512 (signature name "rsa-sha2-512").
	RSAHashSHA512
)

// SignatureName returns the SSH signature algorithm name.
func (h RSAHash) SignatureName() string {
	switch h {
	case RSAHashSHA256:
		return "rsa-sha2-256"
	case RSAHashSHA512:
		return "rsa-sha2-512"
	default:
		return "ssh-rsa"
	}
}

func (h RSAHash) cryptoHash() crypto.Hash {
	switch h {
	case RSAHashSHA256:
		return crypto.SHA256
	case RSAHashSHA512:
		return crypto.SHA512
	default:
		return crypto.SHA1
	}
}

// MinRSABits is the smallest modulus the library will construct or accept
// for generation.
const MinRSABits = 1024

// DefaultRSABits is the generation default.
const DefaultRSABits = 2048

func newRSAKeyPair(key *rsa.PrivateKey, hash RSAHash, comment string) (*KeyPair, error) {
	if err := key.Validate(); err != nil {
		return nil, wrapError(ErrInvalidKey, err)
	}
	key.Precompute()
	return &KeyPair{keyType: KeyTypeRSA, rsa: key, rsaHash: hash, comment: comment}, nil
}

func rsaSign(key *rsa.PrivateKey, hash RSAHash, data []byte) ([]byte, error) {
	h := hash.cryptoHash().New()
	h.Write(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, hash.cryptoHash(), h.Sum(nil))
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return sig, nil
}

func rsaVerify(key *rsa.PublicKey, hash RSAHash, data, sig []byte) (bool, error) {
	h := hash.cryptoHash().New()
	h.Write(data)
	if err := rsa.VerifyPKCS1v15(key, hash.cryptoHash(), h.Sum(nil), sig); err != nil {
		return false, nil
	}
	return true, nil
}

// encodeRSAPrivate writes the container private fields: n, e, d, iqmp, p, q.
func encodeRSAPrivate(w *sshwire.Writer, key *rsa.PrivateKey) {
	w.MPInt(key.N)
	w.MPInt(big.NewInt(int64(key.E)))
	w.MPInt(key.D)
	w.MPInt(key.Precomputed.Qinv)
	w.MPInt(key.Primes[0])
	w.MPInt(key.Primes[1])
}

// decodeRSAPrivate reads the container private fields and rebuilds the key,
// checking agreement with the embedded public key.
func decodeRSAPrivate(r *sshwire.Reader, pub *rsa.PublicKey) (*rsa.PrivateKey, error) {
	n, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	e, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	d, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	// iqmp is re-derived by Precompute; it is read only to advance the
	// stream.
	if _, err := r.MPInt(); err != nil {
		return nil, mapWireError(err)
	}
	p, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	q, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}

	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, errorf(ErrInvalidKey, "rsa public exponent out of range")
	}
	if n.Cmp(pub.N) != 0 || int(e.Int64()) != pub.E {
		return nil, errorf(ErrInvalidKeyFormat, "private section does not match embedded rsa public key")
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	if err := key.Validate(); err != nil {
		return nil, wrapError(ErrInvalidKey, err)
	}
	key.Precompute()
	return key, nil
}

// mapWireError translates sshwire reader failures to the error taxonomy.
func mapWireError(err error) *Error {
	switch {
	case errors.Is(err, sshwire.ErrShortBuffer):
		return wrapError(ErrInvalidLength, err)
	case errors.Is(err, sshwire.ErrNegativeMPInt):
		return wrapError(ErrInvalidKeyFormat, err)
	default:
		return wrapError(ErrIO, err)
	}
}
