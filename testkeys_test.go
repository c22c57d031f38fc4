package osshkeys

import (
	"bytes"
	"sync"
	"testing"
)

var (
	testKeysOnce sync.Once
	testKeysMap  map[KeyType]*KeyPair
	testKeysErr  error
)

// testKeys generates one key pair per algorithm, once per test binary. Key
// generation (DSA parameter search in particular) is too slow to repeat in
// every test.
func testKeys(t *testing.T) map[KeyType]*KeyPair {
	t.Helper()
	testKeysOnce.Do(func() {
		testKeysMap = make(map[KeyType]*KeyPair)
		for _, kt := range []KeyType{KeyTypeRSA, KeyTypeDSA, KeyTypeECDSA, KeyTypeEd25519} {
			kp, err := GenerateKeyPair(kt)
			if err != nil {
				testKeysErr = err
				return
			}
			testKeysMap[kt] = kp
		}
	})
	if testKeysErr != nil {
		t.Fatalf("generating test keys: %v", testKeysErr)
	}
	return testKeysMap
}

// assertKeyPairsEqual compares every private and public field of two pairs.
func assertKeyPairsEqual(t *testing.T, want, got *KeyPair) {
	t.Helper()
	if want.KeyType() != got.KeyType() {
		t.Fatalf("key type = %v, want %v", got.KeyType(), want.KeyType())
	}
	switch want.KeyType() {
	case KeyTypeRSA:
		w, g := want.rsa, got.rsa
		if w.N.Cmp(g.N) != 0 || w.E != g.E {
			t.Fatal("rsa public fields differ")
		}
		if w.D.Cmp(g.D) != 0 {
			t.Fatal("rsa private exponent differs")
		}
		if len(w.Primes) != len(g.Primes) {
			t.Fatal("rsa prime count differs")
		}
		for i := range w.Primes {
			if w.Primes[i].Cmp(g.Primes[i]) != 0 {
				t.Fatalf("rsa prime %d differs", i)
			}
		}
	case KeyTypeDSA:
		w, g := want.dsa, got.dsa
		if w.P.Cmp(g.P) != 0 || w.Q.Cmp(g.Q) != 0 || w.G.Cmp(g.G) != 0 {
			t.Fatal("dsa parameters differ")
		}
		if w.Y.Cmp(g.Y) != 0 || w.X.Cmp(g.X) != 0 {
			t.Fatal("dsa key values differ")
		}
	case KeyTypeECDSA:
		w, g := want.ecdsa, got.ecdsa
		if w.Curve != g.Curve {
			t.Fatal("ecdsa curves differ")
		}
		if w.X.Cmp(g.X) != 0 || w.Y.Cmp(g.Y) != 0 || w.D.Cmp(g.D) != 0 {
			t.Fatal("ecdsa key values differ")
		}
	case KeyTypeEd25519:
		if !bytes.Equal(want.ed25519, got.ed25519) {
			t.Fatal("ed25519 keys differ")
		}
	}
}
