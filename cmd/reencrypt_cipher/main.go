// Re-encrypts a .spk credential backup under a new passphrase, with fresh salt and nonce.
// Usage: go run ./cmd/reencrypt_cipher FILE.spk
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/sui-passkey/backup"
	"github.com/AlexZinkM/sui-passkey/internal/config"
	"github.com/AlexZinkM/sui-passkey/internal/crypto"

	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:          "reencrypt_cipher FILE.spk",
		Short:        "Change the passphrase of a credential backup",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rekey(args[0])
		},
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func rekey(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !crypto.IsBackup(raw) {
		return fmt.Errorf("%s is not an encrypted %s backup", path, crypto.BackupExt)
	}
	address, err := crypto.ReadBackupAddress(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Backup of %s\n", address)

	oldPassphrase, err := config.PromptForPassphrase("Current passphrase: ")
	if err != nil {
		return err
	}
	defer clear(oldPassphrase)

	newPassphrase, err := config.PromptForNewPassphrase()
	if err != nil {
		return err
	}
	defer clear(newPassphrase)

	if err := backup.Rekey(path, oldPassphrase, newPassphrase); err != nil {
		if errors.Is(err, crypto.ErrInvalidPassphrase) {
			return errors.New("current passphrase is wrong")
		}
		return err
	}
	fmt.Fprintln(os.Stderr, "Backup re-encrypted")
	return nil
}
