package osshcipher

import (
	"errors"
	"fmt"

	"github.com/dchest/bcrypt_pbkdf"
)

// KDF names the container can negotiate.
const (
	KDFNone   = "none"
	KDFBcrypt = "bcrypt"
)

// ErrBadKDFParams is returned when the bcrypt options are unusable.
var ErrBadKDFParams = errors.New("osshcipher: bad kdf parameters")

// BcryptKDF derives length bytes of key material from a passphrase using
// bcrypt_pbkdf, the KDF OpenSSH uses for encrypted private keys.
func BcryptKDF(passphrase, salt []byte, rounds uint32, length int) ([]byte, error) {
	if rounds == 0 || len(salt) == 0 {
		return nil, fmt.Errorf("%w: rounds=%d salt=%d bytes", ErrBadKDFParams, rounds, len(salt))
	}
	key, err := bcrypt_pbkdf.Key(passphrase, salt, int(rounds), length)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKDFParams, err)
	}
	return key, nil
}
