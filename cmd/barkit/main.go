package main

import "github.com/MeKo-Tech/barkit/cmd/barkit/cmd"

func main() {
	cmd.Execute()
}
