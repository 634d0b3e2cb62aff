package main

import "github.com/deploymenttheory/go-partition/cmd"

func main() {
	cmd.Execute()
}
