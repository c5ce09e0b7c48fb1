package main

import "github.com/syslvlup/syslvlup/internal/cli"

func main() {
	cli.Execute()
}
