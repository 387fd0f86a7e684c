package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Time0o/buenzlicoin/chain/keypair"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for the configured wallet",
	Run:   addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) {
	priv, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(priv.Public().Address())
}

func loadPrivateKey() (keypair.PrivateKey, error) {
	data, err := os.ReadFile(getPrivateKeyPath())
	if err != nil {
		return keypair.PrivateKey{}, err
	}

	return keypair.ParsePrivateKeyPEM(string(data))
}
