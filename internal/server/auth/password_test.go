package auth

import "testing"

func TestPasswordHasher_HashAndCheck(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(4) // min cost keeps the test fast

	hash, err := h.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "pw123" || hash == "" {
		t.Fatalf("hash must not echo the plaintext: %q", hash)
	}

	if !h.Check("pw123", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if h.Check("pw124", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestPasswordHasher_TwoHashesDiffer(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(4)

	h1, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("salted hashes of equal inputs must differ")
	}
}

func TestPasswordHasher_MalformedHashIsNonMatch(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(4)

	if h.Check("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed stored hash must be treated as non-match")
	}
	if h.Check("anything", "") {
		t.Fatalf("empty stored hash must be treated as non-match")
	}
}

func TestNewPasswordHasher_CostOutOfRangeFallsBack(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(99)
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash error with fallback cost: %v", err)
	}
	if !h.Check("pw", hash) {
		t.Fatalf("expected round-trip with fallback cost")
	}
}
