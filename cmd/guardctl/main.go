// Command guardctl runs a single guarded operation from the command line.
package main

import (
	"os"

	"github.com/dmitrymomot/inputguard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
