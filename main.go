/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/racemates/racemates-go/cmd"

func main() {
	cmd.Execute()
}
