// Package cmd implements a small command-line wallet for talking to
// a node's administrative REST surface: generating keys, checking an
// address's balance, and sending value to another address.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	keyName  string
	keyPath  string
)

const keyExtension = ".pem"

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "A simple wallet for the node's admin API",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyName, "wallet", "w", "private.pem", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&keyPath, "wallet-path", "p", "zblock/wallets/", "Path to the directory holding private key files.")
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(keyName, keyExtension) {
		keyName += keyExtension
	}
	return filepath.Join(keyPath, keyName)
}
