package main

import "github.com/KaramelBytes/medintel/cmd"

func main() {
	cmd.Execute()
}
