package main

import (
	"context"
	"os"

	"loramgr/internal/cli"
)

func main() {
	os.Exit(cli.Main(context.Background()))
}
