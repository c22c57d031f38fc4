package osshkeys

import (
	"crypto"
	"crypto/ecdsa"
	stded25519 "crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/youmark/pkcs8"
)

// pkcs8Opts fixes the PBES2 parameters for encrypted PKCS#8 output:
// AES-128-CBC under PBKDF2-HMAC-SHA256, mirroring the original's fixed
// aes-128-cbc choice.
var pkcs8Opts = &pkcs8.Opts{
	Cipher: pkcs8.AES128CBC,
	KDFOpts: pkcs8.PBKDF2Opts{
		SaltSize:       8,
		IterationCount: 2048,
		HMACHash:       crypto.SHA256,
	},
}

// parsePKCS8Plain handles the unencrypted "PRIVATE KEY" body. DSA is not in
// the standard parser and falls back to the hand-built decoder.
func parsePKCS8Plain(der []byte) (*KeyPair, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		if dsaKey, dsaErr := parseDSAPKCS8(der); dsaErr == nil {
			return newDSAKeyPair(dsaKey, "")
		}
		return nil, wrapError(ErrCrypto, err)
	}
	return keyPairFromPKCS8(key)
}

// parsePKCS8Encrypted handles the "ENCRYPTED PRIVATE KEY" body. Any
// provider-side failure is reported as an incorrect passphrase: PBES2 gives
// no way to tell a wrong passphrase from a corrupted body.
func parsePKCS8Encrypted(der, passphrase []byte) (*KeyPair, error) {
	if len(passphrase) == 0 {
		return nil, errorf(ErrInvalidArgument, "key is encrypted but no passphrase was supplied")
	}
	key, err := pkcs8.ParsePKCS8PrivateKey(der, passphrase)
	if err != nil {
		return nil, wrapError(ErrIncorrectPassphrase, err)
	}
	return keyPairFromPKCS8(key)
}

func keyPairFromPKCS8(key any) (*KeyPair, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return newRSAKeyPair(k, RSAHashSHA1, "")
	case *ecdsa.PrivateKey:
		return newECDSAKeyPair(k, "")
	case stded25519.PrivateKey:
		return FromSigner(k)
	default:
		return nil, errorf(ErrUnsupportedType, "pkcs#8 key type %T", key)
	}
}

// PKCS8 encodes the pair as a PKCS#8 PEM body. With a passphrase the body is
// an "ENCRYPTED PRIVATE KEY" protected with the fixed AES-128-CBC PBES2
// scheme. DSA has a plain PKCS#8 form but no encrypted one here: neither the
// standard library nor the PKCS#8 provider will build PBES2 around DSA.
func (kp *KeyPair) PKCS8(passphrase []byte) ([]byte, error) {
	if kp.keyType == KeyTypeDSA {
		if len(passphrase) > 0 {
			return nil, errorf(ErrUnsupportedType, "encrypted pkcs#8 is not supported for dsa keys")
		}
		der, err := marshalDSAPKCS8(kp.dsa)
		if err != nil {
			return nil, err
		}
		return encodePEM(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	}

	var key any
	switch kp.keyType {
	case KeyTypeRSA:
		key = kp.rsa
	case KeyTypeECDSA:
		key = kp.ecdsa
	case KeyTypeEd25519:
		key = stdEd25519Private(kp.ed25519)
	default:
		return nil, newError(ErrUnknown)
	}

	if len(passphrase) == 0 {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, wrapError(ErrCrypto, err)
		}
		return encodePEM(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	}

	der, err := pkcs8.MarshalPrivateKey(key, passphrase, pkcs8Opts)
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return encodePEM(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der})
}
