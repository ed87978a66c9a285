package main

import (
	"os"

	"github.com/iv-menshenin/uniqid/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
