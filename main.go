package main

import "github.com/Bitlatte/mdxsite/cmd"

func main() {
	cmd.Execute()
}
