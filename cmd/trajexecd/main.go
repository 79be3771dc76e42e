package main

import (
	"os"

	"github.com/msto63/trajexec/cmd/trajexecd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
