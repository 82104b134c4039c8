package main

import (
	"os"

	"github.com/francois-poidevin/adsbchecker/cli/cmd"
)

func main() {
	cmd.ExecuteLauncher(os.Args[1:])
}
