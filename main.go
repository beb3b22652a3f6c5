package main

import "github.com/dsarkar/galleria/cmd"

func main() {
	cmd.Execute()
}
