// Command passkey-wallet serves a passkey-backed Sui wallet over HTTP and
// manages its stored credential.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "passkey-wallet",
		Short:         "Sui wallet whose key lives in a passkey",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (default $PASSKEY_CONFIG_FILE)")

	root.AddCommand(serveCmd(), addressCmd(), credentialCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
