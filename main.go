package main

import "github.com/iksnae/cursor-history/cmd"

func main() {
	cmd.Execute()
}
