package main

import "github.com/HazeMiya/ai-2024/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
