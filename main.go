package main

import "github.com/agentic-research/sitetree/cmd"

func main() {
	cmd.Execute()
}
