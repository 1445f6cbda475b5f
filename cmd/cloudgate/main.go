package main

import "github.com/skyhook-labs/cloudgate/cmd/cloudgate/commands"

func main() {
	commands.Execute()
}
