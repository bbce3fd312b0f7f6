package main

import "dvw-reader/internal/cli"

func main() {
	cli.Execute()
}
