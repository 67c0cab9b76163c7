package main

import (
	"fmt"
	"os"

	"github.com/Priya8975/keyword-pager/cmd/keywordctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
