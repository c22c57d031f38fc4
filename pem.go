package osshkeys

import (
	"crypto/dsa"
	"crypto/ecdsa"
	stded25519 "crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/cloudflare/circl/sign/ed25519"
	"golang.org/x/crypto/ssh"

	"github.com/LuaKT/osshkeys-go/internal/secret"
)

// isEncryptedPEM reports whether the block carries RFC 1423 encryption
// headers. A Proc-Type header that is present but not "4,ENCRYPTED" is a
// different PEM protection scheme and unsupported.
func isEncryptedPEM(block *pem.Block) (bool, error) {
	procType, ok := block.Headers["Proc-Type"]
	if !ok {
		return false, nil
	}
	if strings.TrimSpace(procType) != "4,ENCRYPTED" {
		return false, errorf(ErrUnsupportedType, "pem Proc-Type %q", procType)
	}
	return true, nil
}

// parseTraditional handles the OpenSSL "RSA/DSA/EC PRIVATE KEY" bodies,
// decrypting RFC 1423 protection through the selected PEMCipherProvider.
func parseTraditional(block *pem.Block, passphrase []byte, provider PEMCipherProvider) (*KeyPair, error) {
	encrypted, err := isEncryptedPEM(block)
	if err != nil {
		return nil, err
	}

	der := block.Bytes
	if encrypted {
		if len(passphrase) == 0 {
			return nil, errorf(ErrInvalidArgument, "key is encrypted but no passphrase was supplied")
		}
		der, err = provider.Decrypt(block, passphrase)
		if err != nil {
			return nil, err
		}
		// der is a decrypted copy holding private material.
		defer secret.Zero(der)
	}
	// An unencrypted body ignores a supplied passphrase, matching OpenSSL's
	// behavior for traditional PEM. The native container is stricter.

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			return nil, traditionalParseError(encrypted, err)
		}
		return newRSAKeyPair(key, RSAHashSHA1, "")
	case "DSA PRIVATE KEY":
		key, err := ssh.ParseDSAPrivateKey(der)
		if err != nil {
			return nil, traditionalParseError(encrypted, err)
		}
		return newDSAKeyPair(key, "")
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(der)
		if err != nil {
			return nil, traditionalParseError(encrypted, err)
		}
		return newECDSAKeyPair(key, "")
	default:
		return nil, errorf(ErrUnsupportedType, "pem tag %q", block.Type)
	}
}

// traditionalParseError classifies a body that failed ASN.1 parsing. After a
// CBC decrypt there is no integrity check, so garbage here most likely means
// the passphrase was wrong.
func traditionalParseError(encrypted bool, err error) *Error {
	if encrypted {
		return wrapError(ErrIncorrectPassphrase, err)
	}
	return wrapError(ErrCrypto, err)
}

func parsePKCS1PublicKey(der []byte) (*PublicKey, error) {
	key, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return &PublicKey{keyType: KeyTypeRSA, rsa: key, rsaHash: RSAHashSHA1}, nil
}

func parsePKIXPublicKey(der []byte) (*PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	switch k := key.(type) {
	case *rsa.PublicKey, *dsa.PublicKey, *ecdsa.PublicKey, stded25519.PublicKey:
		return FromPublic(k)
	default:
		return nil, errorf(ErrUnsupportedType, "public key type %T", key)
	}
}

// encryptedPEMCipher is the fixed cipher for passphrase-protected
// traditional PEM output. Not caller-selectable.
var encryptedPEMCipher = x509.PEMCipherAES128

// OpenSSHPEM encodes the pair as a PEM-armored native openssh-key-v1
// container. With a passphrase the payload is encrypted with the cipher
// chosen by WithCipher (default aes256-ctr) under a bcrypt-derived key.
func (kp *KeyPair) OpenSSHPEM(passphrase []byte, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)
	blob, err := encodeOpenSSHPrivateKey(kp, passphrase, cfg)
	if err != nil {
		return nil, err
	}
	return encodePEM(&pem.Block{Type: opensshPEMType, Bytes: blob})
}

// PEM encodes the pair in the traditional OpenSSL PEM form for its
// algorithm: PKCS#1 for RSA, OpenSSL DSA, SEC1 for ECDSA, and PKCS#8 for
// Ed25519 (which has no traditional form). With a passphrase the body is
// protected with AES-128-CBC; the cipher is fixed, not negotiable.
func (kp *KeyPair) PEM(passphrase []byte) ([]byte, error) {
	var (
		der     []byte
		pemType string
		err     error
	)
	switch kp.keyType {
	case KeyTypeRSA:
		der = x509.MarshalPKCS1PrivateKey(kp.rsa)
		pemType = "RSA PRIVATE KEY"
	case KeyTypeDSA:
		der, err = marshalDSAPrivateASN1(kp.dsa)
		pemType = "DSA PRIVATE KEY"
	case KeyTypeECDSA:
		der, err = marshalECPrivate(kp.ecdsa)
		pemType = "EC PRIVATE KEY"
	case KeyTypeEd25519:
		return kp.PKCS8(passphrase)
	default:
		return nil, newError(ErrUnknown)
	}
	if err != nil {
		return nil, err
	}
	// der is the plaintext private-key body; the armored output owns its own
	// copy.
	defer secret.Zero(der)

	if len(passphrase) == 0 {
		return encodePEM(&pem.Block{Type: pemType, Bytes: der})
	}
	block, encErr := x509.EncryptPEMBlock(rand.Reader, pemType, der, passphrase, encryptedPEMCipher)
	if encErr != nil {
		return nil, wrapError(ErrCrypto, encErr)
	}
	return encodePEM(block)
}

func marshalECPrivate(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return der, nil
}

// PEM encodes the public key: PKCS#1 armor for RSA, SubjectPublicKeyInfo
// armor for everything else.
func (pk *PublicKey) PEM() ([]byte, error) {
	switch pk.keyType {
	case KeyTypeRSA:
		return encodePEM(&pem.Block{
			Type:  "RSA PUBLIC KEY",
			Bytes: x509.MarshalPKCS1PublicKey(pk.rsa),
		})
	case KeyTypeDSA:
		der, err := marshalDSASPKI(pk.dsa)
		if err != nil {
			return nil, err
		}
		return encodePEM(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	case KeyTypeECDSA:
		der, err := x509.MarshalPKIXPublicKey(pk.ecdsa)
		if err != nil {
			return nil, wrapError(ErrCrypto, err)
		}
		return encodePEM(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	case KeyTypeEd25519:
		der, err := x509.MarshalPKIXPublicKey(stded25519.PublicKey(pk.ed25519))
		if err != nil {
			return nil, wrapError(ErrEd25519, err)
		}
		return encodePEM(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	default:
		return nil, newError(ErrUnknown)
	}
}

func encodePEM(block *pem.Block) ([]byte, error) {
	out := pem.EncodeToMemory(block)
	if out == nil {
		return nil, errorf(ErrFormatter, "pem encoding failed")
	}
	return out, nil
}

// circl and stdlib ed25519 keys share the same byte layout; this converts
// for providers that only accept the stdlib type.
func stdEd25519Private(key ed25519.PrivateKey) stded25519.PrivateKey {
	return stded25519.PrivateKey(key)
}
