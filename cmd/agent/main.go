package main

import "github.com/justsurfingit/Agentic-Job-Applier/internal/cli"

func main() {
	cli.Execute()
}
