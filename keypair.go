package osshkeys

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	stded25519 "crypto/ed25519"
	"crypto/rsa"
	"math/big"

	"github.com/cloudflare/circl/sign/ed25519"
)

// KeyType identifies one of the four supported key algorithms.
type KeyType int

const (
	// KeyTypeRSA is an RSA key.
	KeyTypeRSA KeyType = iota + 1
	// KeyTypeDSA is a DSA key.
	KeyTypeDSA
	// KeyTypeECDSA is an ECDSA key on a NIST curve.
	KeyTypeECDSA
	// KeyTypeEd25519 is an Ed25519 key.
	KeyTypeEd25519
)

// String returns the SSH name of the key type. For ECDSA the curve-qualified
// name lives on the key itself; this is the family name.
func (t KeyType) String() string {
	switch t {
	case KeyTypeRSA:
		return "ssh-rsa"
	case KeyTypeDSA:
		return "ssh-dss"
	case KeyTypeECDSA:
		return "ecdsa-sha2"
	case KeyTypeEd25519:
		return "ssh-ed25519"
	}
	return "unknown"
}

// KeyPair holds the private and public halves of a key of exactly one
// algorithm. It is immutable after construction except for SetComment and
// Destroy. A KeyPair is only ever fully initialized: construction either
// succeeds completely or returns an error and no key.
type KeyPair struct {
	keyType KeyType

	rsa     *rsa.PrivateKey
	dsa     *dsa.PrivateKey
	ecdsa   *ecdsa.PrivateKey
	ed25519 ed25519.PrivateKey

	rsaHash RSAHash
	comment string
}

// FromSigner wraps a provider-native private key object. Accepted types are
// *rsa.PrivateKey, *dsa.PrivateKey, *ecdsa.PrivateKey, crypto/ed25519
// PrivateKey and circl ed25519 PrivateKey. Anything else fails with
// ErrTypeNotMatch.
func FromSigner(key crypto.PrivateKey, opts ...Option) (*KeyPair, error) {
	cfg := newConfig(opts)
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return newRSAKeyPair(k, cfg.rsaHash, cfg.comment)
	case *dsa.PrivateKey:
		return newDSAKeyPair(k, cfg.comment)
	case *ecdsa.PrivateKey:
		return newECDSAKeyPair(k, cfg.comment)
	case ed25519.PrivateKey:
		return newEd25519KeyPair(k, cfg.comment)
	case stded25519.PrivateKey:
		return newEd25519KeyPair(ed25519.PrivateKey(k), cfg.comment)
	default:
		return nil, errorf(ErrTypeNotMatch, "unsupported private key type %T", key)
	}
}

// KeyType reports which algorithm the pair holds.
func (kp *KeyPair) KeyType() KeyType {
	return kp.keyType
}

// Comment returns the key comment.
func (kp *KeyPair) Comment() string {
	return kp.comment
}

// SetComment replaces the key comment.
func (kp *KeyPair) SetComment(comment string) {
	kp.comment = comment
}

// RSA returns the underlying RSA key, or ErrTypeNotMatch if the pair holds a
// different algorithm.
func (kp *KeyPair) RSA() (*rsa.PrivateKey, error) {
	if kp.keyType != KeyTypeRSA {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ssh-rsa", kp.keyType)
	}
	return kp.rsa, nil
}

// DSA returns the underlying DSA key, or ErrTypeNotMatch.
func (kp *KeyPair) DSA() (*dsa.PrivateKey, error) {
	if kp.keyType != KeyTypeDSA {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ssh-dss", kp.keyType)
	}
	return kp.dsa, nil
}

// ECDSA returns the underlying ECDSA key, or ErrTypeNotMatch.
func (kp *KeyPair) ECDSA() (*ecdsa.PrivateKey, error) {
	if kp.keyType != KeyTypeECDSA {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ecdsa-sha2", kp.keyType)
	}
	return kp.ecdsa, nil
}

// Ed25519 returns the underlying Ed25519 key, or ErrTypeNotMatch.
func (kp *KeyPair) Ed25519() (ed25519.PrivateKey, error) {
	if kp.keyType != KeyTypeEd25519 {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ssh-ed25519", kp.keyType)
	}
	return kp.ed25519, nil
}

// RSAHash reports the signature hash an RSA pair advertises. It is
// meaningless for other key types.
func (kp *KeyPair) RSAHash() RSAHash {
	return kp.rsaHash
}

// PublicKey returns an owned copy of the public half. The copy shares no
// storage with the KeyPair, so destroying one does not affect the other.
func (kp *KeyPair) PublicKey() *PublicKey {
	pub := &PublicKey{keyType: kp.keyType, rsaHash: kp.rsaHash, comment: kp.comment}
	switch kp.keyType {
	case KeyTypeRSA:
		pub.rsa = &rsa.PublicKey{N: new(big.Int).Set(kp.rsa.N), E: kp.rsa.E}
	case KeyTypeDSA:
		pub.dsa = &dsa.PublicKey{
			Parameters: dsa.Parameters{
				P: new(big.Int).Set(kp.dsa.P),
				Q: new(big.Int).Set(kp.dsa.Q),
				G: new(big.Int).Set(kp.dsa.G),
			},
			Y: new(big.Int).Set(kp.dsa.Y),
		}
	case KeyTypeECDSA:
		pub.ecdsa = &ecdsa.PublicKey{
			Curve: kp.ecdsa.Curve,
			X:     new(big.Int).Set(kp.ecdsa.X),
			Y:     new(big.Int).Set(kp.ecdsa.Y),
		}
	case KeyTypeEd25519:
		p := make(ed25519.PublicKey, ed25519.PublicKeySize)
		copy(p, kp.ed25519[ed25519.SeedSize:])
		pub.ed25519 = p
	}
	return pub
}

// Sign signs data with the private key. RSA uses PKCS#1 v1.5 with the
// configured hash, DSA and ECDSA produce ASN.1 DER signatures, Ed25519
// returns the raw 64-byte signature.
func (kp *KeyPair) Sign(data []byte) ([]byte, error) {
	switch kp.keyType {
	case KeyTypeRSA:
		return rsaSign(kp.rsa, kp.rsaHash, data)
	case KeyTypeDSA:
		return dsaSign(kp.dsa, data)
	case KeyTypeECDSA:
		return ecdsaSign(kp.ecdsa, data)
	case KeyTypeEd25519:
		return ed25519.Sign(kp.ed25519, data), nil
	}
	return nil, newError(ErrUnknown)
}

// Destroy zeroizes the private scalar and seed material. The KeyPair must
// not be used afterwards. Public material is left intact.
func (kp *KeyPair) Destroy() {
	switch kp.keyType {
	case KeyTypeRSA:
		zeroBigInt(kp.rsa.D)
		for _, p := range kp.rsa.Primes {
			zeroBigInt(p)
		}
		zeroBigInt(kp.rsa.Precomputed.Dp)
		zeroBigInt(kp.rsa.Precomputed.Dq)
		zeroBigInt(kp.rsa.Precomputed.Qinv)
	case KeyTypeDSA:
		zeroBigInt(kp.dsa.X)
	case KeyTypeECDSA:
		zeroBigInt(kp.ecdsa.D)
	case KeyTypeEd25519:
		for i := range kp.ed25519 {
			kp.ed25519[i] = 0
		}
	}
}

// zeroBigInt overwrites the magnitude words of n and resets it to zero.
func zeroBigInt(n *big.Int) {
	if n == nil {
		return
	}
	words := n.Bits()
	for i := range words {
		words[i] = 0
	}
	n.SetInt64(0)
}
