package osshkeys

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/LuaKT/osshkeys-go/internal/osshcipher"
	"github.com/LuaKT/osshkeys-go/internal/secret"
	"github.com/LuaKT/osshkeys-go/internal/sshwire"
)

// opensshMagic is the fixed preamble of the openssh-key-v1 container,
// including its trailing NUL.
const opensshMagic = "openssh-key-v1\x00"

// opensshPEMType is the armor tag of the native container.
const opensshPEMType = "OPENSSH PRIVATE KEY"

// DefaultCipher is the cipher used for passphrase-protected native container
// encoding when the caller does not pick one.
const DefaultCipher = "aes256-ctr"

// bcrypt parameters for encode, matching ssh-keygen defaults.
const (
	bcryptSaltSize   = 16
	defaultKDFRounds = 16
)

// decodeOpenSSHPrivateKey parses the binary openssh-key-v1 container (the
// bytes inside the PEM armor). It is a single forward pass: every length
// prefix is checked against the remaining buffer and nothing is re-read.
func decodeOpenSSHPrivateKey(blob, passphrase []byte) (*KeyPair, error) {
	r := sshwire.NewReader(blob)

	magic, err := r.Bytes(len(opensshMagic))
	if err != nil || !bytes.Equal(magic, []byte(opensshMagic)) {
		return nil, errorf(ErrInvalidKeyFormat, "missing openssh-key-v1 magic")
	}

	cipherName, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	kdfName, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	kdfOpts, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	numKeys, err := r.Uint32()
	if err != nil {
		return nil, mapWireError(err)
	}
	if numKeys != 1 {
		return nil, errorf(ErrInvalidFormat, "container holds %d keys, want exactly 1", numKeys)
	}
	pubBlob, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	payload, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	if r.Remaining() != 0 {
		return nil, errorf(ErrInvalidKeyFormat, "%d trailing bytes after payload", r.Remaining())
	}

	spec, err := osshcipher.Lookup(string(cipherName))
	if err != nil {
		return nil, mapCipherError(err)
	}

	plain, err := decryptPayload(spec, string(kdfName), kdfOpts, payload, passphrase)
	if err != nil {
		return nil, err
	}
	if !spec.IsNone() {
		// plain is a decrypted copy holding private material.
		defer secret.Zero(plain)
	}

	return parsePrivatePayload(plain, pubBlob, spec.BlockSize)
}

// decryptPayload enforces the cipher/KDF/passphrase consistency rules and
// returns the plaintext payload.
func decryptPayload(spec osshcipher.Spec, kdfName string, kdfOpts, payload, passphrase []byte) ([]byte, error) {
	if spec.IsNone() {
		if kdfName != osshcipher.KDFNone || len(kdfOpts) != 0 {
			return nil, errorf(ErrInvalidKeyFormat, "unencrypted container negotiates kdf %q", kdfName)
		}
		if len(passphrase) > 0 {
			return nil, errorf(ErrIncorrectPassphrase, "passphrase supplied for an unencrypted key")
		}
		return payload, nil
	}

	switch kdfName {
	case osshcipher.KDFBcrypt:
	case osshcipher.KDFNone:
		return nil, errorf(ErrInvalidKeyFormat, "cipher %s negotiated without a kdf", spec.Name)
	default:
		return nil, errorf(ErrUnsupportedCipher, "kdf %q", kdfName)
	}
	if len(passphrase) == 0 {
		return nil, errorf(ErrInvalidArgument, "key is encrypted with %s but no passphrase was supplied", spec.Name)
	}

	kr := sshwire.NewReader(kdfOpts)
	salt, err := kr.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	rounds, err := kr.Uint32()
	if err != nil {
		return nil, mapWireError(err)
	}
	if kr.Remaining() != 0 {
		return nil, errorf(ErrInvalidKeyFormat, "trailing bytes in kdf options")
	}

	keyIV, err := osshcipher.BcryptKDF(passphrase, salt, rounds, spec.KeyLen+spec.IVLen)
	if err != nil {
		return nil, mapCipherError(err)
	}
	defer secret.Zero(keyIV)

	plain, err := spec.Decrypt(keyIV[:spec.KeyLen], keyIV[spec.KeyLen:], payload)
	if err != nil {
		return nil, mapCipherError(err)
	}
	return plain, nil
}

// parsePrivatePayload parses the decrypted payload: checksum pair, embedded
// public key agreement, algorithm-specific private fields, comment, padding.
func parsePrivatePayload(plain, pubBlob []byte, blockSize int) (*KeyPair, error) {
	pr := sshwire.NewReader(plain)

	check1, err := pr.Uint32()
	if err != nil {
		return nil, mapWireError(err)
	}
	check2, err := pr.Uint32()
	if err != nil {
		return nil, mapWireError(err)
	}
	// The checksum pair is the only integrity evidence; a mismatch means
	// wrong passphrase or corruption and the two are not distinguished.
	if check1 != check2 {
		return nil, errorf(ErrIncorrectPassphrase, "checksum mismatch")
	}

	pub, err := parsePublicBlob(pubBlob)
	if err != nil {
		return nil, err
	}
	sshPub, err := pub.sshPublicKey()
	if err != nil {
		return nil, err
	}

	keyTypeName, err := pr.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	if string(keyTypeName) != sshPub.Type() {
		return nil, errorf(ErrInvalidKeyFormat, "private section key type %q does not match public key type %q",
			keyTypeName, sshPub.Type())
	}

	kp := &KeyPair{keyType: pub.keyType, rsaHash: pub.rsaHash}
	switch pub.keyType {
	case KeyTypeRSA:
		kp.rsa, err = decodeRSAPrivate(pr, pub.rsa)
	case KeyTypeDSA:
		kp.dsa, err = decodeDSAPrivate(pr, pub.dsa)
	case KeyTypeECDSA:
		kp.ecdsa, err = decodeECDSAPrivate(pr, pub.ecdsa)
	case KeyTypeEd25519:
		kp.ed25519, err = decodeEd25519Private(pr, pub.ed25519)
	}
	if err != nil {
		return nil, err
	}

	comment, err := pr.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	kp.comment = string(comment)

	padding := pr.Rest()
	if len(padding) >= blockSize {
		return nil, errorf(ErrInvalidKeyFormat, "%d padding bytes for block size %d", len(padding), blockSize)
	}
	for i, b := range padding {
		if b != byte(i+1) {
			return nil, errorf(ErrInvalidKeyFormat, "padding byte %d is %#x", i, b)
		}
	}

	return kp, nil
}

// parsePublicBlob decodes one algorithm-tagged public key blob, classifying
// unknown algorithms before handing the blob to the provider.
func parsePublicBlob(pubBlob []byte) (*PublicKey, error) {
	br := sshwire.NewReader(pubBlob)
	algName, err := br.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	switch alg := string(algName); alg {
	case "ssh-rsa", "ssh-dss", "ssh-ed25519",
		"ecdsa-sha2-nistp256", "ecdsa-sha2-nistp384", "ecdsa-sha2-nistp521":
	default:
		if strings.HasPrefix(alg, "ecdsa-sha2-") {
			return nil, errorf(ErrUnsupportedCurve, "curve %q", strings.TrimPrefix(alg, "ecdsa-sha2-"))
		}
		return nil, errorf(ErrUnsupportedType, "key type %q", alg)
	}

	sshPub, err := ssh.ParsePublicKey(pubBlob)
	if err != nil {
		return nil, wrapError(ErrInvalidKeyFormat, err)
	}
	return publicKeyFromSSH(sshPub)
}

// encodeOpenSSHPrivateKey builds the binary openssh-key-v1 container. With a
// passphrase it negotiates cfg.cipher (default aes256-ctr) and bcrypt with a
// fresh salt; without one it negotiates "none"/"none". The checksum pair is
// freshly randomized on every call.
func encodeOpenSSHPrivateKey(kp *KeyPair, passphrase []byte, cfg *config) ([]byte, error) {
	pub := kp.PublicKey()
	sshPub, err := pub.sshPublicKey()
	if err != nil {
		return nil, err
	}
	pubBlob := sshPub.Marshal()

	spec, err := osshcipher.Lookup(osshcipher.CipherNone)
	if err != nil {
		return nil, mapCipherError(err)
	}
	if len(passphrase) > 0 {
		spec, err = osshcipher.Lookup(cfg.cipher)
		if err != nil {
			return nil, mapCipherError(err)
		}
		if spec.IsNone() {
			return nil, errorf(ErrInvalidArgument, "passphrase supplied with cipher %q", osshcipher.CipherNone)
		}
	}

	var check uint32
	if err := binary.Read(rand.Reader, binary.BigEndian, &check); err != nil {
		return nil, wrapError(ErrIO, err)
	}

	var priv sshwire.Writer
	priv.Uint32(check)
	priv.Uint32(check)
	priv.String([]byte(sshPub.Type()))
	switch kp.keyType {
	case KeyTypeRSA:
		encodeRSAPrivate(&priv, kp.rsa)
	case KeyTypeDSA:
		encodeDSAPrivate(&priv, kp.dsa)
	case KeyTypeECDSA:
		encodeECDSAPrivate(&priv, kp.ecdsa)
	case KeyTypeEd25519:
		encodeEd25519Private(&priv, kp.ed25519)
	default:
		return nil, newError(ErrUnknown)
	}
	priv.String([]byte(kp.comment))
	for i := 1; priv.Len()%spec.BlockSize != 0; i++ {
		priv.Raw([]byte{byte(i)})
	}
	plain := priv.Bytes()
	defer secret.Zero(plain)

	var w sshwire.Writer
	w.Raw([]byte(opensshMagic))
	w.String([]byte(spec.Name))

	payload := plain
	if spec.IsNone() {
		w.String([]byte(osshcipher.KDFNone))
		w.String(nil)
	} else {
		salt := make([]byte, bcryptSaltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, wrapError(ErrIO, err)
		}
		var kdfOpts sshwire.Writer
		kdfOpts.String(salt)
		kdfOpts.Uint32(defaultKDFRounds)
		w.String([]byte(osshcipher.KDFBcrypt))
		w.String(kdfOpts.Bytes())

		keyIV, err := osshcipher.BcryptKDF(passphrase, salt, defaultKDFRounds, spec.KeyLen+spec.IVLen)
		if err != nil {
			return nil, mapCipherError(err)
		}
		defer secret.Zero(keyIV)

		payload, err = spec.Encrypt(keyIV[:spec.KeyLen], keyIV[spec.KeyLen:], plain)
		if err != nil {
			return nil, mapCipherError(err)
		}
	}

	w.Uint32(1)
	w.String(pubBlob)
	w.String(payload)
	return w.Bytes(), nil
}

// mapCipherError translates osshcipher failures to the error taxonomy.
func mapCipherError(err error) *Error {
	switch {
	case errors.Is(err, osshcipher.ErrUnknownCipher):
		return wrapError(ErrUnsupportedCipher, err)
	case errors.Is(err, osshcipher.ErrKeyIVSize):
		return wrapError(ErrInvalidKeyIVLength, err)
	case errors.Is(err, osshcipher.ErrPartialBlock):
		return wrapError(ErrInvalidLength, err)
	case errors.Is(err, osshcipher.ErrBadKDFParams):
		return wrapError(ErrInvalidArgument, err)
	default:
		return wrapError(ErrUnknown, err)
	}
}
