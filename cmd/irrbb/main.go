package main

import (
	"os"

	"github.com/almready/irrbb/cmd/irrbb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
