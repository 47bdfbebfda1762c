// Command placectl runs category and place imports from the command line.
package main

import (
	"os"

	_ "github.com/JonMunkholm/placemap/internal/core/kinds" // Register import kinds
)

func main() {
	if err := newRootCmd(connectPostgres).Execute(); err != nil {
		os.Exit(1)
	}
}
