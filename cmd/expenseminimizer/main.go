package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	a, err := newApp(os.Stdout, os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
