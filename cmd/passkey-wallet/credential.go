package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlexZinkM/sui-passkey/backup"
	"github.com/AlexZinkM/sui-passkey/internal/config"
	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/crypto"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/internal/storage"
	"github.com/AlexZinkM/sui-passkey/sui"

	"github.com/spf13/cobra"
)

var errNoCredential = errors.New("no credential stored: run serve and connect first")

// openStore loads config and opens the configured storage scope.
func openStore() (*credential.Store, io.Closer, error) {
	if err := config.Init(configFile); err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	scope, closer, err := storage.Open(config.Get().StorageOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return credential.NewStore(scope, nil), closer, nil
}

func storedCredential(store *credential.Store) (*model.Credential, string, error) {
	cred, err := store.Get()
	if err != nil {
		return nil, "", err
	}
	if cred == nil {
		return nil, "", errNoCredential
	}
	publicKey, err := credential.PublicKey(cred)
	if err != nil {
		return nil, "", err
	}
	address, err := sui.PasskeyAddress(publicKey)
	if err != nil {
		return nil, "", err
	}
	return cred, address, nil
}

func addressCmd() *cobra.Command {
	var withQR bool
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the Sui address of the stored passkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer.Close()

			_, address, err := storedCredential(store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), address)
			if withQR {
				qr, err := backup.GenerateQRCode(address)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), qr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withQR, "qr", false, "also print the address QR code as base64 PNG")
	return cmd
}

func credentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Inspect, back up or reset the stored passkey descriptor",
	}
	cmd.AddCommand(credentialShowCmd(), credentialExportCmd(), credentialImportCmd(), credentialResetCmd())
	return cmd
}

func credentialShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored descriptor as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer.Close()

			cred, address, err := storedCredential(store)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(model.CredentialResponse{Credential: cred, Address: address})
		},
	}
}

func credentialExportCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the descriptor to a passphrase-encrypted .spk backup",
		Long: "Write the descriptor to a passphrase-encrypted .spk backup. The descriptor holds\n" +
			"no private key; --plain writes it as JSON instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer.Close()

			if plain {
				raw, err := store.Export()
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[0], raw, 0600); err != nil {
					return fmt.Errorf("failed to write descriptor: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Descriptor written to %s\n", args[0])
				return nil
			}

			cred, _, err := storedCredential(store)
			if err != nil {
				return err
			}
			passphrase, err := config.PromptForNewPassphrase()
			if err != nil {
				return err
			}
			defer clear(passphrase)

			address, err := backup.Export(args[0], config.GetNetwork(), cred, passphrase)
			if backup.IsFileExistsError(err) {
				return fmt.Errorf("%s already holds data: choose another file", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup of %s written to %s\n", address, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "write unencrypted JSON")
	return cmd
}

func credentialImportCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Restore the descriptor from an encrypted backup or a plain JSON descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer.Close()

			if existing, err := store.Get(); err != nil {
				return err
			} else if existing != nil && !force {
				return errors.New("a credential is already stored: pass --force to replace it")
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if crypto.IsBackup(raw) {
				passphrase, err := config.PromptForPassphrase("Backup passphrase: ")
				if err != nil {
					return err
				}
				defer clear(passphrase)

				cred, err := backup.Import(args[0], passphrase)
				if err != nil {
					return err
				}
				if err := store.Put(cred); err != nil {
					return err
				}
			} else if _, err := store.Import(raw); err != nil {
				return err
			}
			_, address, err := storedCredential(store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", address)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an already stored credential")
	return cmd
}

func credentialResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the whole storage scope, forgetting the passkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closer, err := openStore()
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := store.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Storage scope cleared")
			return nil
		},
	}
}
