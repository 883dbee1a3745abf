package main

import "dealersync/cmd"

func main() {
	cmd.Execute()
}
