package main

import (
	"github.com/mcoot/snapguess/internal/cli"
)

func main() {
	cli.Execute()
}
