package main

import "github.com/francois-poidevin/adsbchecker/cli/cmd"

func main() {
	cmd.Execute()
}
