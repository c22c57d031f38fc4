package osshkeys

import (
	"crypto/dsa"
	"crypto/rand"
	"crypto/sha1"
	"encoding/asn1"
	"math/big"

	"github.com/LuaKT/osshkeys-go/internal/sshwire"
)

func newDSAKeyPair(key *dsa.PrivateKey, comment string) (*KeyPair, error) {
	if err := validateDSA(key); err != nil {
		return nil, err
	}
	return &KeyPair{keyType: KeyTypeDSA, dsa: key, comment: comment}, nil
}

// validateDSA checks that the public value matches the private scalar.
func validateDSA(key *dsa.PrivateKey) error {
	if key.P == nil || key.Q == nil || key.G == nil || key.X == nil || key.Y == nil {
		return errorf(ErrInvalidKey, "dsa key is missing parameters")
	}
	y := new(big.Int).Exp(key.G, key.X, key.P)
	if y.Cmp(key.Y) != 0 {
		return errorf(ErrInvalidKey, "dsa public value does not match private scalar")
	}
	return nil
}

// dsaSignature is the ASN.1 DER form shared with ECDSA.
type dsaSignature struct {
	R, S *big.Int
}

func dsaSign(key *dsa.PrivateKey, data []byte) ([]byte, error) {
	sum := sha1.Sum(data)
	r, s, err := dsa.Sign(rand.Reader, key, sum[:])
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	der, err := asn1.Marshal(dsaSignature{R: r, S: s})
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return der, nil
}

func dsaVerify(key *dsa.PublicKey, data, sig []byte) (bool, error) {
	var parsed dsaSignature
	if rest, err := asn1.Unmarshal(sig, &parsed); err != nil || len(rest) != 0 {
		return false, nil
	}
	sum := sha1.Sum(data)
	return dsa.Verify(key, sum[:], parsed.R, parsed.S), nil
}

// encodeDSAPrivate writes the container private fields: p, q, g, y, x.
func encodeDSAPrivate(w *sshwire.Writer, key *dsa.PrivateKey) {
	w.MPInt(key.P)
	w.MPInt(key.Q)
	w.MPInt(key.G)
	w.MPInt(key.Y)
	w.MPInt(key.X)
}

// decodeDSAPrivate reads the container private fields and rebuilds the key,
// checking agreement with the embedded public key.
func decodeDSAPrivate(r *sshwire.Reader, pub *dsa.PublicKey) (*dsa.PrivateKey, error) {
	p, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	q, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	g, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	y, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}
	x, err := r.MPInt()
	if err != nil {
		return nil, mapWireError(err)
	}

	if p.Cmp(pub.P) != 0 || q.Cmp(pub.Q) != 0 || g.Cmp(pub.G) != 0 || y.Cmp(pub.Y) != 0 {
		return nil, errorf(ErrInvalidKeyFormat, "private section does not match embedded dsa public key")
	}

	key := &dsa.PrivateKey{
		PublicKey: dsa.PublicKey{
			Parameters: dsa.Parameters{P: p, Q: q, G: g},
			Y:          y,
		},
		X: x,
	}
	if err := validateDSA(key); err != nil {
		return nil, err
	}
	return key, nil
}

// OpenSSL's traditional "DSA PRIVATE KEY" body.
type dsaPrivASN1 struct {
	Version int
	P, Q, G *big.Int
	Y, X    *big.Int
}

var oidDSA = asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}

type dsaAlgorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters dsaASN1Params
}

type dsaASN1Params struct {
	P, Q, G *big.Int
}

type dsaPKCS8 struct {
	Version    int
	Algorithm  dsaAlgorithmIdentifier
	PrivateKey []byte
}

type dsaSPKI struct {
	Algorithm dsaAlgorithmIdentifier
	PublicKey asn1.BitString
}

// marshalDSAPrivateASN1 produces the OpenSSL traditional DSA body. The
// standard library has no DSA marshaling at all, so this is hand-built.
func marshalDSAPrivateASN1(key *dsa.PrivateKey) ([]byte, error) {
	der, err := asn1.Marshal(dsaPrivASN1{
		Version: 0,
		P:       key.P, Q: key.Q, G: key.G,
		Y: key.Y, X: key.X,
	})
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return der, nil
}

// marshalDSAPKCS8 produces an unencrypted PKCS#8 DSA body: the x scalar as a
// bare INTEGER under the DSA algorithm identifier.
func marshalDSAPKCS8(key *dsa.PrivateKey) ([]byte, error) {
	priv, err := asn1.Marshal(key.X)
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	der, err := asn1.Marshal(dsaPKCS8{
		Version: 0,
		Algorithm: dsaAlgorithmIdentifier{
			Algorithm:  oidDSA,
			Parameters: dsaASN1Params{P: key.P, Q: key.Q, G: key.G},
		},
		PrivateKey: priv,
	})
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return der, nil
}

// parseDSAPKCS8 is the inverse of marshalDSAPKCS8, needed because
// x509.ParsePKCS8PrivateKey rejects DSA.
func parseDSAPKCS8(der []byte) (*dsa.PrivateKey, error) {
	var p8 dsaPKCS8
	if rest, err := asn1.Unmarshal(der, &p8); err != nil || len(rest) != 0 {
		return nil, errorf(ErrInvalidKeyFormat, "malformed pkcs#8 dsa body")
	}
	if !p8.Algorithm.Algorithm.Equal(oidDSA) {
		return nil, errorf(ErrUnsupportedType, "pkcs#8 algorithm %v", p8.Algorithm.Algorithm)
	}
	x := new(big.Int)
	if rest, err := asn1.Unmarshal(p8.PrivateKey, &x); err != nil || len(rest) != 0 {
		return nil, errorf(ErrInvalidKeyFormat, "malformed pkcs#8 dsa private scalar")
	}
	params := p8.Algorithm.Parameters
	key := &dsa.PrivateKey{
		PublicKey: dsa.PublicKey{
			Parameters: dsa.Parameters{P: params.P, Q: params.Q, G: params.G},
			Y:          new(big.Int).Exp(params.G, x, params.P),
		},
		X: x,
	}
	if err := validateDSA(key); err != nil {
		return nil, err
	}
	return key, nil
}

// marshalDSASPKI produces a SubjectPublicKeyInfo body for a DSA public key;
// x509.MarshalPKIXPublicKey refuses DSA even though ParsePKIXPublicKey
// accepts it.
func marshalDSASPKI(key *dsa.PublicKey) ([]byte, error) {
	pub, err := asn1.Marshal(key.Y)
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	der, err := asn1.Marshal(dsaSPKI{
		Algorithm: dsaAlgorithmIdentifier{
			Algorithm:  oidDSA,
			Parameters: dsaASN1Params{P: key.P, Q: key.Q, G: key.G},
		},
		PublicKey: asn1.BitString{Bytes: pub, BitLength: len(pub) * 8},
	})
	if err != nil {
		return nil, wrapError(ErrCrypto, err)
	}
	return der, nil
}
