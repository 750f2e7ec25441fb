package main

import "github.com/johnayoung/llm-fanout/internal/cli"

func main() {
	cli.Execute()
}
