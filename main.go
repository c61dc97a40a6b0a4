package main

import "shellm/internal/cli"

func main() {
	cli.Execute()
}
