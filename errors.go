package osshkeys

import "fmt"

// ErrorKind classifies every failure this library can produce. The set is
// closed: callers branch on the kind with errors.Is and treat the wrapped
// cause as diagnostics only.
type ErrorKind int

const (
	// ErrUnknown marks a condition the library did not anticipate. It is
	// never used for a condition that fits another kind.
	ErrUnknown ErrorKind = iota

	// ErrCrypto wraps a failure reported by the underlying cryptography
	// provider (crypto/x509, crypto/rsa, ...). Use errors.Unwrap for the
	// cause.
	ErrCrypto

	// ErrEd25519 wraps a failure from the Ed25519 provider.
	ErrEd25519

	// ErrIO is a reader-level failure while consuming the input buffer.
	ErrIO

	// ErrFormatter is a failure to format output data.
	ErrFormatter

	// ErrInvalidArgument means the caller misused the API, e.g. omitted a
	// passphrase that an encrypted container requires.
	ErrInvalidArgument

	// ErrInvalidKeyFormat means the key data violates the container
	// grammar: bad magic, inconsistent cipher/KDF negotiation, malformed
	// padding, trailing garbage.
	ErrInvalidKeyFormat

	// ErrInvalidFormat means the container structure itself is unusable,
	// e.g. a key count other than one.
	ErrInvalidFormat

	// ErrInvalidKey means the provider rejected reconstructed key
	// material: invalid scalar, point not on curve, bad seed.
	ErrInvalidKey

	// ErrInvalidKeySize means a requested or decoded key size is out of
	// range.
	ErrInvalidKeySize

	// ErrInvalidLength means a length prefix or slice length constraint
	// was violated, including reads past the end of the buffer.
	ErrInvalidLength

	// ErrUnsupportedCurve means the elliptic curve is not supported.
	ErrUnsupportedCurve

	// ErrUnsupportedCipher means the cipher or KDF name is not supported.
	ErrUnsupportedCipher

	// ErrIncorrectPassphrase means the payload failed its integrity check
	// after decryption. A wrong passphrase and corrupted data are
	// indistinguishable by design and are reported identically.
	ErrIncorrectPassphrase

	// ErrTypeNotMatch means the caller asked for a different algorithm
	// than the key actually holds.
	ErrTypeNotMatch

	// ErrUnsupportedType means the key type or PEM tag is not recognized.
	ErrUnsupportedType

	// ErrInvalidPEMFormat means the PEM armor is malformed or absent.
	ErrInvalidPEMFormat

	// ErrInvalidKeyIVLength means the derived key or IV cannot satisfy
	// the cipher's requirements.
	ErrInvalidKeyIVLength
)

var kindDescriptions = map[ErrorKind]string{
	ErrUnknown:             "unknown error",
	ErrCrypto:              "cryptography provider error",
	ErrEd25519:             "ed25519 error",
	ErrIO:                  "i/o error",
	ErrFormatter:           "format error",
	ErrInvalidArgument:     "invalid argument",
	ErrInvalidKeyFormat:    "invalid key format",
	ErrInvalidFormat:       "invalid format",
	ErrInvalidKey:          "invalid key",
	ErrInvalidKeySize:      "invalid key size",
	ErrInvalidLength:       "invalid length",
	ErrUnsupportedCurve:    "unsupported elliptic curve",
	ErrUnsupportedCipher:   "unsupported cipher",
	ErrIncorrectPassphrase: "incorrect passphrase",
	ErrTypeNotMatch:        "key type not match",
	ErrUnsupportedType:     "unsupported key type",
	ErrInvalidPEMFormat:    "invalid pem format",
	ErrInvalidKeyIVLength:  "invalid key/iv length",
}

// String returns the kind's description.
func (k ErrorKind) String() string {
	if d, ok := kindDescriptions[k]; ok {
		return d
	}
	return kindDescriptions[ErrUnknown]
}

// Error makes an ErrorKind usable as a target for errors.Is.
func (k ErrorKind) Error() string {
	return k.String()
}

// Error is the error type returned by every operation in this library. It
// carries a Kind for programmatic branching and an optional wrapped cause
// from an underlying provider for diagnostics.
type Error struct {
	Kind  ErrorKind
	cause error
}

func newError(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

func wrapError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, cause: fmt.Errorf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying provider error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is this error's kind, so that
// errors.Is(err, ErrIncorrectPassphrase) works.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}
