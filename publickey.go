package osshkeys

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	stded25519 "crypto/ed25519"
	"crypto/rsa"

	"github.com/cloudflare/circl/sign/ed25519"
	"golang.org/x/crypto/ssh"
)

// PublicKey holds the public half of a key of exactly one algorithm. It is
// parsed standalone or derived from a KeyPair; either way it owns its
// material and shares nothing with other values.
type PublicKey struct {
	keyType KeyType

	rsa     *rsa.PublicKey
	dsa     *dsa.PublicKey
	ecdsa   *ecdsa.PublicKey
	ed25519 ed25519.PublicKey

	rsaHash RSAHash
	comment string
}

// FromPublic wraps a provider-native public key object. Accepted types are
// *rsa.PublicKey, *dsa.PublicKey, *ecdsa.PublicKey, crypto/ed25519 PublicKey
// and circl ed25519 PublicKey. Anything else fails with ErrTypeNotMatch.
func FromPublic(key crypto.PublicKey, opts ...Option) (*PublicKey, error) {
	cfg := newConfig(opts)
	pub := &PublicKey{rsaHash: cfg.rsaHash, comment: cfg.comment}
	switch k := key.(type) {
	case *rsa.PublicKey:
		pub.keyType = KeyTypeRSA
		pub.rsa = k
	case *dsa.PublicKey:
		pub.keyType = KeyTypeDSA
		pub.dsa = k
	case *ecdsa.PublicKey:
		if _, ok := curveFromElliptic(k.Curve); !ok {
			return nil, errorf(ErrUnsupportedCurve, "curve %s", k.Curve.Params().Name)
		}
		pub.keyType = KeyTypeECDSA
		pub.ecdsa = k
	case ed25519.PublicKey:
		if len(k) != ed25519.PublicKeySize {
			return nil, errorf(ErrInvalidKeySize, "ed25519 public key is %d bytes", len(k))
		}
		pub.keyType = KeyTypeEd25519
		pub.ed25519 = k
	case stded25519.PublicKey:
		return FromPublic(ed25519.PublicKey(k), opts...)
	default:
		return nil, errorf(ErrTypeNotMatch, "unsupported public key type %T", key)
	}
	return pub, nil
}

// KeyType reports which algorithm the key holds.
func (pk *PublicKey) KeyType() KeyType {
	return pk.keyType
}

// Comment returns the key comment.
func (pk *PublicKey) Comment() string {
	return pk.comment
}

// SetComment replaces the key comment.
func (pk *PublicKey) SetComment(comment string) {
	pk.comment = comment
}

// RSA returns the underlying RSA public key, or ErrTypeNotMatch.
func (pk *PublicKey) RSA() (*rsa.PublicKey, error) {
	if pk.keyType != KeyTypeRSA {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ssh-rsa", pk.keyType)
	}
	return pk.rsa, nil
}

// DSA returns the underlying DSA public key, or ErrTypeNotMatch.
func (pk *PublicKey) DSA() (*dsa.PublicKey, error) {
	if pk.keyType != KeyTypeDSA {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ssh-dss", pk.keyType)
	}
	return pk.dsa, nil
}

// ECDSA returns the underlying ECDSA public key, or ErrTypeNotMatch.
func (pk *PublicKey) ECDSA() (*ecdsa.PublicKey, error) {
	if pk.keyType != KeyTypeECDSA {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ecdsa-sha2", pk.keyType)
	}
	return pk.ecdsa, nil
}

// Ed25519 returns the underlying Ed25519 public key, or ErrTypeNotMatch.
func (pk *PublicKey) Ed25519() (ed25519.PublicKey, error) {
	if pk.keyType != KeyTypeEd25519 {
		return nil, errorf(ErrTypeNotMatch, "key is %s, not ssh-ed25519", pk.keyType)
	}
	return pk.ed25519, nil
}

// Verify checks a signature produced by KeyPair.Sign over data. It returns
// false with a nil error for a well-formed but wrong signature, and an error
// only when verification could not be attempted.
func (pk *PublicKey) Verify(data, sig []byte) (bool, error) {
	switch pk.keyType {
	case KeyTypeRSA:
		return rsaVerify(pk.rsa, pk.rsaHash, data, sig)
	case KeyTypeDSA:
		return dsaVerify(pk.dsa, data, sig)
	case KeyTypeECDSA:
		return ecdsaVerify(pk.ecdsa, data, sig), nil
	case KeyTypeEd25519:
		return ed25519.Verify(pk.ed25519, data, sig), nil
	}
	return false, newError(ErrUnknown)
}

// sshPublicKey converts to the x/crypto/ssh representation used for wire
// blobs, fingerprints and authorized_keys lines.
func (pk *PublicKey) sshPublicKey() (ssh.PublicKey, error) {
	var cryptoPub any
	switch pk.keyType {
	case KeyTypeRSA:
		cryptoPub = pk.rsa
	case KeyTypeDSA:
		cryptoPub = pk.dsa
	case KeyTypeECDSA:
		cryptoPub = pk.ecdsa
	case KeyTypeEd25519:
		cryptoPub = stded25519.PublicKey(pk.ed25519)
	default:
		return nil, newError(ErrUnknown)
	}
	sshPub, err := ssh.NewPublicKey(cryptoPub)
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return sshPub, nil
}

// publicKeyFromSSH maps an x/crypto/ssh public key into the key model.
func publicKeyFromSSH(sshPub ssh.PublicKey) (*PublicKey, error) {
	cryptoHolder, ok := sshPub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, errorf(ErrUnsupportedType, "key type %q", sshPub.Type())
	}
	switch k := cryptoHolder.CryptoPublicKey().(type) {
	case *rsa.PublicKey:
		// Public blobs always carry "ssh-rsa"; the signature hash is
		// negotiated elsewhere, SHA-1 is the conservative default.
		return &PublicKey{keyType: KeyTypeRSA, rsa: k, rsaHash: RSAHashSHA1}, nil
	case *dsa.PublicKey:
		return &PublicKey{keyType: KeyTypeDSA, dsa: k}, nil
	case *ecdsa.PublicKey:
		if _, ok := curveFromElliptic(k.Curve); !ok {
			return nil, errorf(ErrUnsupportedCurve, "curve %s", k.Curve.Params().Name)
		}
		return &PublicKey{keyType: KeyTypeECDSA, ecdsa: k}, nil
	case stded25519.PublicKey:
		return &PublicKey{keyType: KeyTypeEd25519, ed25519: ed25519.PublicKey(k)}, nil
	default:
		return nil, errorf(ErrUnsupportedType, "key type %q", sshPub.Type())
	}
}
