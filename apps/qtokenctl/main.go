package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/quatton/qtoken/apps/qtokenctl/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "qtokenctl crashed: %v\n", r)
			if os.Getenv("QTOKEN_DEBUG") != "" {
				debug.PrintStack()
			}
			os.Exit(2)
		}
	}()

	cmd.Execute()
}
