package osshkeys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"math/big"

	"github.com/LuaKT/osshkeys-go/internal/sshwire"
)

// Curve identifies a supported ECDSA curve.
type Curve int

const (
	// CurveNistP256 is NIST P-256 (SSH name "nistp256").
	CurveNistP256 Curve = iota + 1
	// CurveNistP384 is NIST P-384 (SSH name "nistp384").
	CurveNistP384
	// CurveNistP521 is NIST P-521 (SSH name "nistp521").
	CurveNistP521
)

// String returns the SSH curve identifier.
func (c Curve) String() string {
	switch c {
	case CurveNistP256:
		return "nistp256"
	case CurveNistP384:
		return "nistp384"
	case CurveNistP521:
		return "nistp521"
	}
	return "unknown"
}

func (c Curve) elliptic() elliptic.Curve {
	switch c {
	case CurveNistP256:
		return elliptic.P256()
	case CurveNistP384:
		return elliptic.P384()
	case CurveNistP521:
		return elliptic.P521()
	}
	return nil
}

func curveFromElliptic(c elliptic.Curve) (Curve, bool) {
	switch c {
	case elliptic.P256():
		return CurveNistP256, true
	case elliptic.P384():
		return CurveNistP384, true
	case elliptic.P521():
		return CurveNistP521, true
	}
	return 0, false
}

func newECDSAKeyPair(key *ecdsa.PrivateKey, comment string) (*KeyPair, error) {
	curve, ok := curveFromElliptic(key.Curve)
	if !ok {
		return nil, errorf(ErrUnsupportedCurve, "curve %s", key.Curve.Params().Name)
	}
	if err := validateECDSA(key, curve); err != nil {
		return nil, err
	}
	return &KeyPair{keyType: KeyTypeECDSA, ecdsa: key, comment: comment}, nil
}

// validateECDSA checks the public point lies on the curve and matches the
// private scalar.
func validateECDSA(key *ecdsa.PrivateKey, curve Curve) error {
	ec := curve.elliptic()
	if key.X == nil || key.Y == nil || !ec.IsOnCurve(key.X, key.Y) {
		return errorf(ErrInvalidKey, "ecdsa public point is not on %s", curve)
	}
	x, y := ec.ScalarBaseMult(key.D.Bytes())
	if x.Cmp(key.X) != 0 || y.Cmp(key.Y) != 0 {
		return errorf(ErrInvalidKey, "ecdsa public point does not match private scalar")
	}
	return nil
}

// ecdsaHash picks the hash tied to the curve, per RFC 5656.
func ecdsaHash(c elliptic.Curve) func(data []byte) []byte {
	switch c {
	case elliptic.P384():
		return func(data []byte) []byte {
			sum := sha512.Sum384(data)
			return sum[:]
		}
	case elliptic.P521():
		return func(data []byte) []byte {
			sum := sha512.Sum512(data)
			return sum[:]
		}
	default:
		return func(data []byte) []byte {
			sum := sha256.Sum256(data)
			return sum[:]
		}
	}
}

func ecdsaSign(key *ecdsa.PrivateKey, data []byte) ([]byte, error) {
	sig, err := ecdsa.SignASN1(rand.Reader, key, ecdsaHash(key.Curve)(data))
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return sig, nil
}

func ecdsaVerify(key *ecdsa.PublicKey, data, sig []byte) bool {
	return ecdsa.VerifyASN1(key, ecdsaHash(key.Curve)(data), sig)
}

// encodeECDSAPrivate writes the container private fields: curve name,
// public point, private scalar.
func encodeECDSAPrivate(w *sshwire.Writer, key *ecdsa.PrivateKey) {
	curve, _ := curveFromElliptic(key.Curve)
	w.String([]byte(curve.String()))
	w.String(elliptic.Marshal(key.Curve, key.X, key.Y))
	w.MPInt(key.D)
}

// decodeECDSAPrivate reads the container private fields and rebuilds the
// key, checking agreement with the embedded public key.
func decodeECDSAPrivate(r *sshwire.Reader, pub *ecdsa.PublicKey) (*ecdsa.PrivateKey, error) {
	curveName, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	pointBytes, err := r.String()
	if err != nil {
		return nil, mapWireError(err)
	}
	d, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}

	pubCurve, ok := curveFromElliptic(pub.Curve)
	if !ok {
		return nil, errorf(ErrUnsupportedCurve, "curve %s", pub.Curve.Params().Name)
	}
	if string(curveName) != pubCurve.String() {
		return nil, errorf(ErrInvalidKeyFormat, "private section curve %q does not match public key curve %q",
			curveName, pubCurve)
	}
	x, y := elliptic.Unmarshal(pub.Curve, pointBytes)
	if x == nil {
		return nil, errorf(ErrInvalidKey, "malformed ecdsa point")
	}
	if x.Cmp(pub.X) != 0 || y.Cmp(pub.Y) != 0 {
		return nil, errorf(ErrInvalidKeyFormat, "private section does not match embedded ecdsa public key")
	}

	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: pub.Curve,
			X:     new(big.Int).Set(pub.X),
			Y:     new(big.Int).Set(pub.Y),
		},
		D: d,
	}
	if err := validateECDSA(key, pubCurve); err != nil {
		return nil, err
	}
	return key, nil
}
