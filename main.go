package main

import "github.com/jstall/jstall/cmd"

func main() {
	cmd.Execute()
}
