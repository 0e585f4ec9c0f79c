package main

import (
	"fmt"
	"os"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.DefaultOptions()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
