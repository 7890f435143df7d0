package main

import "github.com/cppla/cracker/cmd"

func main() {
	cmd.Execute()
}
