package main

import (
	"os"
)

// flagctl manages flags on a running flag dashboard API
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
