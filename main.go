package main

import (
	"os"

	"github.com/mizuki/toeflsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
