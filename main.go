package main

import "github.com/pathway-dev/pathway/internal/cli"

func main() {
	cli.Execute()
}
