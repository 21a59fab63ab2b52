package main

import (
	"os"

	"openclaw-manager/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
