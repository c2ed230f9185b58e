package main

import (
	"ttvdrops/cmd/ttvdrops/commands"
)

func main() {
	commands.Execute()
}
