package main

import (
	"os"

	"github.com/zenterm/zenbus/logging"
)

func main() {
	err := newRootCmd().Execute()
	_ = logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
