package main

import "github.com/mcoot/teamboard/internal/cli"

func main() {
	cli.Execute()
}
