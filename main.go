package main

import "github.com/theirongolddev/bplan/cmd"

func main() {
	cmd.Execute()
}
