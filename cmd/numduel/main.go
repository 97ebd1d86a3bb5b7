package main

import "github.com/mcoot/numberduel-go/internal/cli"

func main() {
	cli.Execute()
}
