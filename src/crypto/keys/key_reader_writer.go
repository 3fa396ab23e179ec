package keys

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec"
)

// KeyReaderWriter reads and writes secp256k1 keys from/to any format or
// support.
type KeyReaderWriter interface {
	ReadKey() (*btcec.PrivateKey, error)
	WriteKey(*btcec.PrivateKey) error
}

// SimpleKeyfile implements KeyReaderWriter with unencrypted files holding the
// hex encoded private scalar, as written by the Sawtooth keygen tool.
type SimpleKeyfile struct {
	l       sync.Mutex
	keyfile string
}

// NewSimpleKeyfile instantiates a new SimpleKeyfile with an underlying file
func NewSimpleKeyfile(keyfile string) *SimpleKeyfile {
	return &SimpleKeyfile{
		keyfile: keyfile,
	}
}

// Path ...
func (k *SimpleKeyfile) Path() string {
	return k.keyfile
}

// CheckFileInfo verifies that the file exists and has user permissions only.
func (k *SimpleKeyfile) CheckFileInfo() error {
	info, err := os.Stat(k.keyfile)
	if os.IsNotExist(err) {
		return NewKeyErr(k.keyfile, KeyMissing, nil)
	}
	if err != nil {
		return NewKeyErr(k.keyfile, KeyUnreadable, err)
	}

	if info.IsDir() {
		return NewKeyErr(k.keyfile, KeyUnreadable, fmt.Errorf("is a directory"))
	}

	perm := info.Mode().Perm()

	// 000111111: bits for 'groups' and 'others'
	var nonUserMask os.FileMode = (1 << 6) - 1

	if perm&nonUserMask != 0 {
		return NewKeyErr(k.keyfile, KeyPermissions,
			fmt.Errorf("key file permissions should exclude 'groups' and 'others'. Got %o", perm))
	}

	return nil
}

// ReadKey implements KeyReaderWriter. All failures are KeyErrs.
func (k *SimpleKeyfile) ReadKey() (*btcec.PrivateKey, error) {
	k.l.Lock()
	defer k.l.Unlock()

	if err := k.CheckFileInfo(); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(k.keyfile)
	if err != nil {
		return nil, NewKeyErr(k.keyfile, KeyUnreadable, err)
	}

	key, err := ParsePrivateKeyHex(strings.TrimSpace(string(buf)))
	if err != nil {
		return nil, NewKeyErr(k.keyfile, KeyInvalid, err)
	}

	return key, nil
}

// WriteKey implements KeyReaderWriter. It creates missing parent directories
// with 0700 and the key file with 0600.
func (k *SimpleKeyfile) WriteKey(key *btcec.PrivateKey) error {
	k.l.Lock()
	defer k.l.Unlock()

	if err := os.MkdirAll(filepath.Dir(k.keyfile), 0700); err != nil {
		return err
	}

	return os.WriteFile(k.keyfile, []byte(PrivateKeyHex(key)), 0600)
}
