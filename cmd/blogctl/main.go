// Command blogctl manages blog posts from the command line using the same
// storage and export backends as the HTTP service.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd(&cli{}).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
