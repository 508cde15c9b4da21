package main

import "github.com/MeKo-Tech/signalglobe/internal/cmd"

func main() {
	cmd.Execute()
}
