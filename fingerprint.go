package osshkeys

import (
	"bytes"

	"golang.org/x/crypto/ssh"
)

// FingerprintHash selects the digest used for public key fingerprints.
type FingerprintHash int

const (
	// FingerprintMD5 is the legacy colon-separated hex form.
	FingerprintMD5 FingerprintHash = iota + 1
	// FingerprintSHA256 is the modern "SHA256:" base64 form.
	FingerprintSHA256
)

// Fingerprint returns the key's fingerprint in the requested form, matching
// ssh-keygen -l output.
func (pk *PublicKey) Fingerprint(hash FingerprintHash) (string, error) {
	sshPub, err := pk.sshPublicKey()
	if err != nil {
		return "", err
	}
	switch hash {
	case FingerprintMD5:
		return ssh.FingerprintLegacyMD5(sshPub), nil
	case FingerprintSHA256:
		return ssh.FingerprintSHA256(sshPub), nil
	default:
		return "", errorf(ErrInvalidArgument, "fingerprint hash %d", hash)
	}
}

// AuthorizedKey returns the key as a single authorized_keys line, with the
// comment appended when present.
func (pk *PublicKey) AuthorizedKey() ([]byte, error) {
	sshPub, err := pk.sshPublicKey()
	if err != nil {
		return nil, err
	}
	line := bytes.TrimRight(ssh.MarshalAuthorizedKey(sshPub), "\n")
	if pk.comment != "" {
		line = append(line, ' ')
		line = append(line, pk.comment...)
	}
	return append(line, '\n'), nil
}
