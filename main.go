package main

import "github.com/metal-toolbox/gcesync/cmd"

func main() {
	cmd.Execute()
}
