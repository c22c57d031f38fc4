// Package osshkeys parses, validates, and serializes SSH key material for
// RSA, DSA, ECDSA, and Ed25519 keys across the three common on-disk
// containers: the native openssh-key-v1 binary format, PEM-wrapped
// PKCS#1/SEC1/OpenSSL bodies, and PKCS#8 — optionally protected by a
// passphrase-derived symmetric cipher.
//
// Basic usage:
//
//	kp, err := osshkeys.ParseKeyPair(pemBytes, []byte("passphrase"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer kp.Destroy()
//
//	pub := kp.PublicKey()
//	line, _ := pub.AuthorizedKey()
//	fmt.Print(string(line))
//
// # Error handling
//
// Every failure carries one kind from a closed set; branch with errors.Is:
//
//	if errors.Is(err, osshkeys.ErrIncorrectPassphrase) {
//	    // wrong passphrase, or corrupted key data — the format cannot
//	    // tell the two apart
//	}
//
// The wrapped cause from the underlying crypto provider is available via
// errors.Unwrap for diagnostics, but only the kind is stable API.
//
// # Security notes
//
// Parsing is a single bounded pass over attacker-controllable input: a
// malformed or truncated key fails with a classified error, never a panic,
// and never yields a partially initialized key.
//
// Buffers holding derived cipher keys and decrypted payloads are zeroized on
// every exit path. Call Destroy on a KeyPair when done with it to zeroize
// the private material it owns; the Go runtime will not do this for you.
//
// All operations are pure functions over in-memory buffers. The library
// performs no I/O and keeps no state, so concurrent use on independent
// inputs is safe.
package osshkeys
