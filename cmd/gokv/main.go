// Command gokv runs a Redis-protocol-compatible, in-memory, multi-tenant
// key-value server.
package main

import (
	"fmt"
	"os"

	"github.com/rustyorg/gokv/cmd/gokv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
