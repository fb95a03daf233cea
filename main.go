package main

import "github.com/roadpulse/roadpulse/cmd"

func main() {
	cmd.Execute()
}
