// Package secret provides helpers for scrubbing sensitive byte buffers.
//
// Any buffer that has held a derived cipher key, a decrypted key payload, or
// raw private-key material must be passed through Zero before its storage is
// released, on every exit path. Callers typically arrange this with defer at
// the point the buffer is created.
package secret

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroAll overwrites every given buffer with zeros.
func ZeroAll(bufs ...[]byte) {
	for _, b := range bufs {
		Zero(b)
	}
}
