package main

import "github.com/mfasDa/alice-fast-simulation/cmd"

func main() {
	cmd.Execute()
}
