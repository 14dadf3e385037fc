package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 1
		}
		fmt.Fprintln(os.Stderr, "ghplayer:", err)
		return 1
	}
	return 0
}
