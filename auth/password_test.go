package auth

import "testing"

func TestHashIsSalted(t *testing.T) {
	hasher := NewHasher()
	first, err := hasher.Hash("p1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := hasher.Hash("p1")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("two hashes of the same plaintext must differ, the salt is not fresh")
	}
	for _, h := range []string{first, second} {
		ok, err := hasher.Verify("p1", h)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("hash %v should verify against its own plaintext", h)
		}
	}
}

func TestVerifyMismatch(t *testing.T) {
	hasher := NewHasher()
	h, err := hasher.Hash("p1")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := hasher.Verify("p2", h)
	if err != nil {
		t.Fatalf("a mismatch is not an error, got %v", err)
	}
	if ok {
		t.Fatal("wrong plaintext should not verify")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := NewHasher()
	_, err := hasher.Verify("p1", "garbage")
	if err == nil {
		t.Fatal("a stored hash the hasher cannot parse must surface as an error")
	}
}
