package osshkeys

import (
	"crypto/md5"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"strings"

	"github.com/LuaKT/osshkeys-go/internal/osshcipher"
	"github.com/LuaKT/osshkeys-go/internal/secret"
)

// PEMCipherProvider decrypts the body of an RFC 1423 encrypted PEM block
// (Proc-Type: 4,ENCRYPTED with a DEK-Info header). Two implementations are
// available: StandardPEMCipher delegates to crypto/x509, PortablePEMCipher
// reimplements the OpenSSL EVP_BytesToKey scheme directly. Select one with
// WithPEMCipherProvider.
type PEMCipherProvider interface {
	Decrypt(block *pem.Block, passphrase []byte) ([]byte, error)
}

// StandardPEMCipher decrypts legacy PEM bodies with the crypto/x509
// provider. This is the default.
type StandardPEMCipher struct{}

// Decrypt implements PEMCipherProvider.
func (StandardPEMCipher) Decrypt(block *pem.Block, passphrase []byte) ([]byte, error) {
	der, err := x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck // RFC 1423 support is the point here
	if err != nil {
		if errors.Is(err, x509.IncorrectPasswordError) {
			return nil, wrapError(ErrIncorrectPassphrase, err)
		}
		return nil, wrapError(ErrInvalidPEMFormat, err)
	}
	return der, nil
}

// PortablePEMCipher decrypts legacy PEM bodies without the x509 provider:
// the key is derived with OpenSSL's EVP_BytesToKey (MD5, one iteration, salt
// taken from the IV) and the body decrypted through the same cipher table
// the native container uses. DES-CBC is deliberately rejected.
type PortablePEMCipher struct{}

// dekInfoCiphers maps DEK-Info algorithm names onto container cipher names.
var dekInfoCiphers = map[string]string{
	"DES-EDE3-CBC": "3des-cbc",
	"AES-128-CBC":  "aes128-cbc",
	"AES-192-CBC":  "aes192-cbc",
	"AES-256-CBC":  "aes256-cbc",
}

// Decrypt implements PEMCipherProvider.
func (PortablePEMCipher) Decrypt(block *pem.Block, passphrase []byte) ([]byte, error) {
	dekInfo, ok := block.Headers["DEK-Info"]
	if !ok {
		return nil, errorf(ErrInvalidPEMFormat, "encrypted pem block has no DEK-Info header")
	}
	algo, hexIV, ok := strings.Cut(dekInfo, ",")
	if !ok {
		return nil, errorf(ErrInvalidPEMFormat, "malformed DEK-Info %q", dekInfo)
	}

	name, ok := dekInfoCiphers[algo]
	if !ok {
		return nil, errorf(ErrUnsupportedCipher, "pem cipher %q", algo)
	}
	spec, err := osshcipher.Lookup(name)
	if err != nil {
		return nil, mapCipherError(err)
	}

	iv, err := hex.DecodeString(hexIV)
	if err != nil {
		return nil, errorf(ErrInvalidPEMFormat, "malformed DEK-Info iv %q", hexIV)
	}
	if len(iv) != spec.IVLen {
		return nil, errorf(ErrInvalidKeyIVLength, "iv is %d bytes, %s needs %d", len(iv), algo, spec.IVLen)
	}

	// EVP_BytesToKey uses the first 8 IV bytes as the salt.
	key := evpBytesToKey(passphrase, iv[:8], spec.KeyLen)
	defer secret.Zero(key)

	plain, err := spec.Decrypt(key, iv, block.Bytes)
	if err != nil {
		return nil, mapCipherError(err)
	}

	der, err := stripPKCS7Padding(plain, spec.BlockSize)
	if err != nil {
		secret.Zero(plain)
		return nil, err
	}
	return der, nil
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and a single iteration:
// each digest round hashes the previous digest, the passphrase and the salt,
// and rounds are concatenated until keyLen bytes exist.
func evpBytesToKey(passphrase, salt []byte, keyLen int) []byte {
	var key []byte
	var prev []byte
	for len(key) < keyLen {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		key = append(key, prev...)
	}
	return key[:keyLen]
}

// stripPKCS7Padding removes CBC padding. Bad padding after decryption means
// the passphrase was wrong or the body corrupted; the two cannot be told
// apart.
func stripPKCS7Padding(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errorf(ErrIncorrectPassphrase, "bad padding")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errorf(ErrIncorrectPassphrase, "bad padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errorf(ErrIncorrectPassphrase, "bad padding")
		}
	}
	return data[:len(data)-n], nil
}
