package main

import "github.com/gnames/gncurator/cmd"

func main() {
	cmd.Execute()
}
