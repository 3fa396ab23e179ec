package keys

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func testDir(t *testing.T) string {
	os.Mkdir("test_data", os.ModeDir|0700)
	dir, err := os.MkdirTemp("test_data", "notary")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	return dir
}

func TestSimpleKeyfile(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)

	simpleKeyfile := NewSimpleKeyfile(filepath.Join(dir, "keys", "notary.priv"))

	// Try a read, should get nothing
	key, err := simpleKeyfile.ReadKey()
	if !IsKey(err, KeyMissing) {
		t.Fatalf("ReadKey should return a KeyMissing error, not %v", err)
	}
	if key != nil {
		t.Fatalf("key is not nil")
	}

	key, _ = GenerateKey()

	if err := simpleKeyfile.WriteKey(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	nKey, err := simpleKeyfile.ReadKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if PrivateKeyHex(nKey) != PrivateKeyHex(key) {
		t.Fatalf("Keys do not match")
	}
}

func TestFilePermissions(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)

	key, _ := GenerateKey()
	rawKey := PrivateKeyHex(key)

	keyPath := filepath.Join(dir, "notary.priv")
	if err := os.WriteFile(keyPath, []byte(rawKey), 0600); err != nil {
		t.Fatal(err)
	}

	shouldErr := []os.FileMode{
		0777, 0766, 0744,
		0677, 0666, 0644,
		0477, 0466, 0444,
	}

	for _, fm := range shouldErr {
		os.Chmod(keyPath, fm)

		if _, err := NewSimpleKeyfile(keyPath).ReadKey(); !IsKey(err, KeyPermissions) {
			t.Fatalf("%o || should return permissions error, got %v", fm, err)
		}
	}

	shouldNotErr := []os.FileMode{
		0700, 0600, 0500, 0400,
	}

	for _, fm := range shouldNotErr {
		os.Chmod(keyPath, fm)

		if _, err := NewSimpleKeyfile(keyPath).ReadKey(); err != nil {
			t.Fatalf("%o || should not return error. Got %v", fm, err)
		}
	}
}

func TestInvalidKeyfile(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)

	cases := map[string]string{
		"not hex":   "zz not a key",
		"too short": "0102",
		"zero":      "0000000000000000000000000000000000000000000000000000000000000000",
		"above N":   "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}

	for name, content := range cases {
		p := filepath.Join(dir, "bad.priv")
		os.WriteFile(p, []byte(content), 0600)

		_, err := LoadSigner(p)
		if !IsKey(err, KeyInvalid) {
			t.Fatalf("%s: expected KeyInvalid, got %v", name, err)
		}
		if !IsConfiguration(err) {
			t.Fatalf("%s: KeyErr should be a configuration error", name)
		}
		os.Remove(p)
	}
}

func TestLoadSignerTrimsWhitespace(t *testing.T) {
	dir := testDir(t)
	defer os.RemoveAll(dir)

	p := filepath.Join(dir, "one.priv")
	one := "0000000000000000000000000000000000000000000000000000000000000001\n"
	if err := os.WriteFile(p, []byte(one), 0600); err != nil {
		t.Fatal(err)
	}

	signer, err := LoadSigner(p)
	if err != nil {
		t.Fatal(err)
	}

	// 1*G, compressed
	expected := "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	if signer.PublicKeyHex() != expected {
		t.Fatalf("public key should be %s, not %s", expected, signer.PublicKeyHex())
	}
}

func TestParsePrivateKeyHexWhitespace(t *testing.T) {
	one := "0000000000000000000000000000000000000000000000000000000000000001"

	for _, s := range []string{one, " " + one + "\n", "\t" + one + "\r\n"} {
		key, err := ParsePrivateKeyHex(s)
		if err != nil {
			t.Fatalf("%q should parse: %v", s, err)
		}
		if PrivateKeyHex(key) != one {
			t.Fatalf("%q parsed to %s", s, PrivateKeyHex(key))
		}
	}

	if _, err := ParsePrivateKeyHex("00 01"); err == nil {
		t.Fatalf("inner whitespace should not parse")
	}
}

func TestSignVerify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	signer := NewKeySigner(key)

	msg := []byte("header bytes")

	sig, err := signer.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}

	if len(sig) != 2*SignatureSize {
		t.Fatalf("signature should be %d hex chars, not %d", 2*SignatureSize, len(sig))
	}

	again, _ := signer.Sign(msg)
	if again != sig {
		t.Fatalf("signatures should be deterministic")
	}

	if !Verify(signer.PublicKeyHex(), msg, sig) {
		t.Fatalf("signature should verify")
	}

	if Verify(signer.PublicKeyHex(), []byte("other bytes"), sig) {
		t.Fatalf("signature should not verify for other message")
	}

	other, _ := GenerateKey()
	if Verify(PublicKeyHex(other.PubKey()), msg, sig) {
		t.Fatalf("signature should not verify for other key")
	}

	if Verify(signer.PublicKeyHex(), msg, "abcd") {
		t.Fatalf("malformed signature should not verify")
	}
}

func TestSignatureLowS(t *testing.T) {
	key, _ := GenerateKey()

	for i := 0; i < 20; i++ {
		sigHex, err := Sign(key, []byte{byte(i)})
		if err != nil {
			t.Fatal(err)
		}

		sig, err := DecodeSignature(sigHex)
		if err != nil {
			t.Fatal(err)
		}

		halfN := new(big.Int).Rsh(Curve().N, 1)
		if sig.S.Cmp(halfN) > 0 {
			t.Fatalf("signature %d is not low-S", i)
		}

		if EncodeSignature(sig) != sigHex {
			t.Fatalf("encoding round trip mismatch")
		}
	}
}
