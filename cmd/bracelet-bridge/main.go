package main

import "github.com/hearyou/bracelet-bridge/cmd/bracelet-bridge/cmd"

func main() {
	cmd.Execute()
}
