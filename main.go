package main

import "github.com/pders01/extraction-plan/cmd"

func main() {
	cmd.Execute()
}
