package main

import "github.com/example/drillcards/cmd"

func main() {
	cmd.Execute()
}
