package osshkeys

// config holds per-call configuration assembled from Options.
type config struct {
	comment   string
	cipher    string
	pemCipher PEMCipherProvider
	rsaBits   int
	rsaHash   RSAHash
	curve     Curve
}

func newConfig(opts []Option) *config {
	cfg := &config{
		cipher:    DefaultCipher,
		pemCipher: StandardPEMCipher{},
		rsaBits:   DefaultRSABits,
		rsaHash:   RSAHashSHA256,
		curve:     CurveNistP256,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures parsing, encoding, or key generation.
type Option func(*config)

// WithComment sets the comment stored in the native container or attached to
// an authorized_keys line.
func WithComment(comment string) Option {
	return func(c *config) {
		c.comment = comment
	}
}

// WithCipher selects the symmetric cipher for passphrase-protected native
// container encoding. The default is "aes256-ctr". The name must be one of
// the container cipher names, e.g. "aes128-cbc", "3des-cbc".
func WithCipher(name string) Option {
	return func(c *config) {
		c.cipher = name
	}
}

// WithPEMCipherProvider selects the provider used to decrypt legacy RFC 1423
// encrypted PEM bodies (Proc-Type/DEK-Info headers). The default is
// StandardPEMCipher.
func WithPEMCipherProvider(p PEMCipherProvider) Option {
	return func(c *config) {
		c.pemCipher = p
	}
}

// WithRSABits sets the modulus size for RSA key generation. The default is
// 2048.
func WithRSABits(bits int) Option {
	return func(c *config) {
		c.rsaBits = bits
	}
}

// WithRSAHash selects the signature hash an RSA key advertises (ssh-rsa,
// rsa-sha2-256 or rsa-sha2-512). The default is SHA-256.
func WithRSAHash(h RSAHash) Option {
	return func(c *config) {
		c.rsaHash = h
	}
}

// WithCurve selects the curve for ECDSA key generation. The default is
// nistp256.
func WithCurve(curve Curve) Option {
	return func(c *config) {
		c.curve = curve
	}
}
