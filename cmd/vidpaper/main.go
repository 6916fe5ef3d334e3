package main

import (
	"github.com/matjam/vidpaper/internal/cli"
)

func main() {
	cli.Execute()
}
