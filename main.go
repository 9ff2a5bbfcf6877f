package main

import "github.com/Tiliavir/trivial-calendar/cmd"

func main() {
	cmd.Execute()
}
