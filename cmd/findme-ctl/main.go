package main

import "github.com/oshokin/findme/cmd/findme-ctl/cmd"

func main() {
	cmd.Execute()
}
