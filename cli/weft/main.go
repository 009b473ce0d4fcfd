package main

import (
	"os"

	weftcmder "github.com/papercomputeco/weft/cmd/weft"
)

func main() {
	cmd := weftcmder.NewWeftCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
