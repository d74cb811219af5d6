package main

import (
	"os"

	"github.com/aezell/nodpts/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
