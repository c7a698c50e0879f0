package main

import "github.com/oleg578/csvmd/internal/cli"

func main() {
	cli.Main()
}
