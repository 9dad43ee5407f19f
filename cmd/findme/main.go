package main

import "github.com/oshokin/findme/cmd/findme/cmd"

func main() {
	cmd.Execute()
}
