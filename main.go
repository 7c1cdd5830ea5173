package main

import "github.com/protondex/protondex/cmd"

func main() {
	cmd.Execute()
}
