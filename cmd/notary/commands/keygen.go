package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mosaicnetworks/notary/src/crypto/keys"
	"github.com/spf13/cobra"
)

// NewKeygenCmd produces a KeygenCmd which create a key pair
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keygen",
		Short:   "Create new key pair",
		PreRunE: loadConfig,
		RunE:    keygen,
	}

	AddKeygenFlags(cmd)

	return cmd
}

//AddKeygenFlags adds flags to the keygen command
func AddKeygenFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	addKeyFlags(cmd)
	cmd.Flags().Bool("force", _config.Force, "Overwrite an existing key")
}

func keygen(cmd *cobra.Command, args []string) error {
	privKeyFile := _config.Notary.Keyfile()
	pubKeyFile := _config.Notary.PublicKeyfile()

	if _, err := os.Stat(privKeyFile); err == nil && !_config.Force {
		return fmt.Errorf("A key already lives under: %s", privKeyFile)
	}

	key, err := keys.GenerateKey()
	if err != nil {
		return fmt.Errorf("Error generating secp256k1 key: %v", err)
	}

	if err := keys.NewSimpleKeyfile(privKeyFile).WriteKey(key); err != nil {
		return fmt.Errorf("Writing private key: %s", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Your private key has been saved to: %s\n", privKeyFile)

	if err := os.MkdirAll(filepath.Dir(pubKeyFile), 0700); err != nil {
		return fmt.Errorf("Writing public key: %s", err)
	}

	pub := keys.PublicKeyHex(key.PubKey())

	if err := os.WriteFile(pubKeyFile, []byte(pub+"\n"), 0600); err != nil {
		return fmt.Errorf("Writing public key: %s", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Your public key has been saved to: %s\n", pubKeyFile)

	return nil
}
