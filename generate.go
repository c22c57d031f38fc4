package osshkeys

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"

	"github.com/cloudflare/circl/sign/ed25519"
)

// GenerateKeyPair creates a fresh key of the given type. RSA takes
// WithRSABits (default 2048) and WithRSAHash; ECDSA takes WithCurve (default
// nistp256); DSA is fixed at the historical 1024/160 parameters that SSH
// requires for ssh-dss.
func GenerateKeyPair(keyType KeyType, opts ...Option) (*KeyPair, error) {
	cfg := newConfig(opts)
	switch keyType {
	case KeyTypeRSA:
		if cfg.rsaBits < MinRSABits || cfg.rsaBits > 16384 {
			return nil, errorf(ErrInvalidKeySize, "rsa modulus %d bits out of range", cfg.rsaBits)
		}
		key, err := rsa.GenerateKey(rand.Reader, cfg.rsaBits)
		if err != nil {
			return nil, wrapError(ErrCrypto, err)
		}
		return newRSAKeyPair(key, cfg.rsaHash, cfg.comment)

	case KeyTypeDSA:
		var params dsa.Parameters
		if err := dsa.GenerateParameters(&params, rand.Reader, dsa.L1024N160); err != nil {
			return nil, wrapError(ErrCrypto, err)
		}
		key := &dsa.PrivateKey{PublicKey: dsa.PublicKey{Parameters: params}}
		if err := dsa.GenerateKey(key, rand.Reader); err != nil {
			return nil, wrapError(ErrCrypto, err)
		}
		return newDSAKeyPair(key, cfg.comment)

	case KeyTypeECDSA:
		ec := cfg.curve.elliptic()
		if ec == nil {
			return nil, errorf(ErrUnsupportedCurve, "curve %d", cfg.curve)
		}
		key, err := ecdsa.GenerateKey(ec, rand.Reader)
		if err != nil {
			return nil, wrapError(ErrCrypto, err)
		}
		return newECDSAKeyPair(key, cfg.comment)

	case KeyTypeEd25519:
		_, key, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, wrapError(ErrEd25519, err)
		}
		return newEd25519KeyPair(key, cfg.comment)

	default:
		return nil, errorf(ErrUnsupportedType, "key type %d", keyType)
	}
}
