package main

import "github.com/icetools/iceinv/cmd"

func main() {
	cmd.Execute()
}
