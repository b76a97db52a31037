package main

import (
	"fmt"
	"os"

	"github.com/quickdeploy/quickdeploy/cmd"
	"github.com/quickdeploy/quickdeploy/internal/errs"
	"github.com/quickdeploy/quickdeploy/internal/ui"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		if !errs.Reported(err) {
			fmt.Fprintln(os.Stderr, ui.Red("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}
