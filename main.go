package main

import "stacks/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
