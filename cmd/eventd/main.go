package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sandeepkv93/eventd/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "eventd failed: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
