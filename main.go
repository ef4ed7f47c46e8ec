// main is the entry point of the globeplay CLI.
package main

import (
	"github.com/huangsam/globeplay/cmd"
	"github.com/huangsam/globeplay/internal/contract"
)

func main() {
	defer cmd.CloseHistory()
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
