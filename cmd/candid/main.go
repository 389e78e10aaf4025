// Command candid parses Candid interface descriptions into canonical form.
package main

import (
	"fmt"
	"os"

	"github.com/lazyanubis/ic-canister-kit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "candid:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
