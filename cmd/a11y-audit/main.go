package main

import (
	"log"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Printf("a11y-audit: %v", err)
		os.Exit(1)
	}
}
