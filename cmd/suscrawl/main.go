package main

import (
	cmd "github.com/suscrawl/suscrawl/internal/cli"
)

func main() {
	cmd.Execute()
}
