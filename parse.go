package osshkeys

import (
	"encoding/pem"

	"golang.org/x/crypto/ssh"
)

// ParseKeyPair parses a PEM-armored private key in any supported container:
// the native openssh-key-v1 format, traditional PKCS#1/SEC1/OpenSSL bodies,
// or PKCS#8. A nil or empty passphrase means the key is expected to be
// unencrypted. The armor tag alone selects the handler; an unrecognized tag
// fails with ErrUnsupportedType.
func ParseKeyPair(data, passphrase []byte, opts ...Option) (*KeyPair, error) {
	cfg := newConfig(opts)

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errorf(ErrInvalidPEMFormat, "no pem block found")
	}

	switch block.Type {
	case opensshPEMType:
		return decodeOpenSSHPrivateKey(block.Bytes, passphrase)
	case "PRIVATE KEY":
		return parsePKCS8Plain(block.Bytes)
	case "ENCRYPTED PRIVATE KEY":
		return parsePKCS8Encrypted(block.Bytes, passphrase)
	case "RSA PRIVATE KEY", "DSA PRIVATE KEY", "EC PRIVATE KEY":
		return parseTraditional(block, passphrase, cfg.pemCipher)
	default:
		return nil, errorf(ErrUnsupportedType, "pem tag %q", block.Type)
	}
}

// ParsePublicKey parses a standalone public key: SubjectPublicKeyInfo PEM,
// PKCS#1 "RSA PUBLIC KEY" PEM, or a single authorized_keys line.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		sshPub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
		if err != nil {
			return nil, wrapError(ErrInvalidKeyFormat, err)
		}
		pub, err := publicKeyFromSSH(sshPub)
		if err != nil {
			return nil, err
		}
		pub.comment = comment
		return pub, nil
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		return parsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		return parsePKIXPublicKey(block.Bytes)
	default:
		return nil, errorf(ErrUnsupportedType, "pem tag %q", block.Type)
	}
}
