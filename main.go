package main

import "busmanager/cmd"

func main() {
	cmd.Execute()
}
