package main

import (
	"fmt"
	"os"

	"github.com/Kenz1481/web-deployment-website/internal/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
