// package main provides the pdvd-notices command line, which shows operators the notices
// that apply to their tool version and construct tree, and serves the same data over HTTP.
package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "0.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
