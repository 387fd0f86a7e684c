package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Time0o/buenzlicoin/chain/txn"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the wallet's balance over the node's unspent outputs",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Base URL of the node's admin API.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	priv, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	address := priv.Public().Address()

	resp, err := http.Get(nodeURL + "/transactions/unspent")
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var utxos []txn.UTxO
	if err := json.NewDecoder(resp.Body).Decode(&utxos); err != nil {
		log.Fatal(err)
	}

	var total uint64
	for _, u := range utxos {
		if u.Output.Address == address {
			total += u.Output.Amount
		}
	}

	fmt.Println(total)
}
