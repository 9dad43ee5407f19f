package main

import "github.com/oshokin/findme/cmd/findme-sim/cmd"

func main() {
	cmd.Execute()
}
