package secret

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	secret := []byte("0123456789abcdef0123456789abcdef")

	hash, err := hasher.Hash(secret)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify(secret, hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected secret verification to succeed")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash([]byte("correct-secret-bytes"))
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify([]byte("replayed-secret-bytes"), hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected stale secret verification to fail")
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	secret := []byte("same-secret-twice")

	first, err := hasher.Hash(secret)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash(secret)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}

func TestVerifyMalformedPHC(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	for _, encoded := range []string{
		"",
		"$argon2id$v=19$m=8192,t=1,p=1$short",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"not-a-phc-string",
	} {
		if _, err := hasher.Verify([]byte("anything"), encoded); err == nil {
			t.Fatalf("expected parse error for %q", encoded)
		}
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Memory = 512

	if _, err := NewArgon2(cfg); err == nil {
		t.Fatal("expected weak memory parameter to be rejected")
	}
}
