// Command node runs a single peer in the gossip network: it serves
// the administrative REST API, the peer gossip WebSocket endpoint, and
// a debug mux, until it receives SIGTERM.
package main

import (
	"os"

	"github.com/Time0o/buenzlicoin/cmd/node/cmd"
)

// build is the git version of this program, set using build flags in
// the makefile.
var build = "develop"

func main() {
	cmd.SetBuild(build)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
