package keypair

import "testing"

func TestDeriveDeterministicIsStable(t *testing.T) {
	var encKey [31]byte
	for i := range encKey {
		encKey[i] = byte(i)
	}

	kp1, err := DeriveDeterministic(encKey)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	kp2, err := DeriveDeterministic(encKey)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if kp1.PublicKey != kp2.PublicKey {
		t.Error("deterministic derivation must yield the same public key for the same encryption key")
	}
}

func TestBatchDummyKeypairsDiffer(t *testing.T) {
	const clock = int64(1_700_000_000)
	a, err := DeriveBatchDummy(clock, 0, 0)
	if err != nil {
		t.Fatalf("derive batch dummy: %v", err)
	}
	b, err := DeriveBatchDummy(clock, 0, 1)
	if err != nil {
		t.Fatalf("derive batch dummy: %v", err)
	}
	c, err := DeriveBatchDummy(clock, 1, 0)
	if err != nil {
		t.Fatalf("derive batch dummy: %v", err)
	}

	if a.PublicKey == b.PublicKey {
		t.Error("siblings within the same slot must have distinct keypairs")
	}
	if a.PublicKey == c.PublicKey {
		t.Error("distinct batch slots must have distinct keypairs")
	}
}

func TestGenerateIsRandom(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a.PrivateKey == b.PrivateKey {
		t.Error("two random keypairs should not collide")
	}
}
