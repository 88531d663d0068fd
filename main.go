package main

import "audiocinema/cmd"

func main() {
	cmd.Execute()
}
