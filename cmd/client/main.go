package main

import "marketsync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
