package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Time0o/buenzlicoin/chain/keypair"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

var (
	nodeURL string
	to      string
	value   uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value to another address",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Base URL of the node's admin API.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address to send to.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Amount to send.")
}

func sendRun(cmd *cobra.Command, args []string) {
	priv, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}
	address := priv.Public().Address()

	refs, total, err := collectInputs(address, value)
	if err != nil {
		log.Fatal(err)
	}

	index, err := nextBlockIndex()
	if err != nil {
		log.Fatal(err)
	}

	outputs := []txn.TxO{{Amount: value, Address: to}}
	if change := total - value; change > 0 {
		outputs = append(outputs, txn.TxO{Amount: change, Address: address})
	}

	signers := make([]keypair.PrivateKey, len(refs))
	for i := range refs {
		signers[i] = priv
	}

	t, err := txn.NewStandard(index, refs, outputs, signers)
	if err != nil {
		log.Fatal(err)
	}

	body, err := json.Marshal(t)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(nodeURL+"/transactions", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	fmt.Println(resp.Status)
}

// collectInputs greedily selects address's unspent outputs from the
// node until their total covers at least amount.
func collectInputs(address string, amount uint64) ([]txn.UTxO, uint64, error) {
	resp, err := http.Get(nodeURL + "/transactions/unspent")
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var utxos []txn.UTxO
	if err := json.NewDecoder(resp.Body).Decode(&utxos); err != nil {
		return nil, 0, err
	}

	var (
		refs  []txn.UTxO
		total uint64
	)

	for _, u := range utxos {
		if u.Output.Address != address {
			continue
		}

		refs = append(refs, u)
		total += u.Output.Amount

		if total >= amount {
			return refs, total, nil
		}
	}

	return nil, 0, fmt.Errorf("insufficient funds: have %d, need %d", total, amount)
}

// nextBlockIndex guesses the index of the block this transaction will
// be included in, as the node's current chain length. If another
// block lands first the node will reject the transaction and the
// wallet must retry.
func nextBlockIndex() (uint64, error) {
	resp, err := http.Get(nodeURL + "/blocks")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var blocks []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&blocks); err != nil {
		return 0, err
	}

	return uint64(len(blocks)), nil
}
