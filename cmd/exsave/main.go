package main

import "github.com/goliatone/go-exsave/cmd/exsave/cmd"

func main() {
	cmd.Execute()
}
