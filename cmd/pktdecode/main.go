// Pktdecode decodes hierarchical bit-packed packet transmissions.
//
// A transmission is a hex string. Each packet inside it carries a version and
// a type; literal packets hold a number and operator packets combine their
// children (sum, product, min, max, gt, lt, eq). Pktdecode prints the decoded
// tree, the sum of all version fields, and the value of the expression.
//
// Usage:
//
//	pktdecode [command] [flags]
//
// Hex input comes from the command argument, --file, or stdin.
// Run 'pktdecode serve' to expose the decoder over WebSocket.
// See 'pktdecode --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/muurk/pktdecode/internal/logging"
)

func main() {
	err := newRootCmd().Execute()
	logging.Sync()
	if err != nil {
		// Styled failures have already been printed
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
