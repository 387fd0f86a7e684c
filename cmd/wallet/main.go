// Command wallet is a small CLI client for the node's administrative
// REST surface: generating keys, checking a balance, and sending
// value to another address.
package main

import "github.com/Time0o/buenzlicoin/app/wallet/cmd"

func main() {
	cmd.Execute()
}
