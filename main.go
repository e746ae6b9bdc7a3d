package main

import "github.com/cabindev/cabin/internal/cmd"

func main() {
	cmd.Execute()
}
