package main

import "github.com/the-snesler/spacebot-sub001/cmd"

func main() {
	cmd.Execute()
}
