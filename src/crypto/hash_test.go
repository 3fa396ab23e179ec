package crypto

import (
	"strings"
	"testing"
)

func TestSHA512Hex(t *testing.T) {
	// sha512("abc"), FIPS 180-2 test vector
	expected := "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
		"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"

	got := SHA512Hex([]byte("abc"))
	if got != expected {
		t.Fatalf("SHA512Hex(abc) should be %s, not %s", expected, got)
	}

	if len(SHA512Hex(nil)) != 128 {
		t.Fatalf("digest should be 128 hex characters")
	}

	if strings.ToLower(got) != got {
		t.Fatalf("digest should be lowercase")
	}
}

func TestSHA256(t *testing.T) {
	if len(SHA256([]byte("notary"))) != 32 {
		t.Fatalf("SHA256 should return 32 bytes")
	}
}
