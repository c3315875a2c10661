package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil || !ok {
		t.Fatalf("correct password should verify (ok=%v err=%v)", ok, err)
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("wrong password must not verify")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password should differ by salt")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-hash"); err == nil {
		t.Fatalf("malformed hash should error")
	}
	if _, err := VerifyPassword("pw", "$bcrypt$v=19$m=65536,t=3,p=2$abc$def"); err == nil {
		t.Fatalf("non-argon2id hash should error")
	}
}

func TestGenerateTokenUnique(t *testing.T) {
	t1, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	t2, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if t1 == t2 {
		t.Fatalf("two generated tokens should never collide")
	}
	if t1 == "" || strings.ContainsAny(t1, "+/=") {
		t.Fatalf("token should be URL-safe, got %q", t1)
	}
}
