package main

import "modaudit/cmd"

func main() {
	cmd.Execute()
}
