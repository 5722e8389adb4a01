package main

import (
	"errors"
	"os"

	"github.com/dgallion1/specgest/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var diagErr *cli.DiagnosticsError
		if errors.As(err, &diagErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
