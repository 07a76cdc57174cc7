package main

import "pihub/cmd/pihub-cli/cmd"

func main() {
	cmd.Execute()
}
