package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Time0o/buenzlicoin/chain/keypair"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair and save the private key to disk",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	priv, err := keypair.Generate()
	if err != nil {
		log.Fatal(err)
	}

	path := getPrivateKeyPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(priv.MarshalPEM()), 0o600); err != nil {
		log.Fatal(err)
	}

	fmt.Println(priv.Public().Address())
}
