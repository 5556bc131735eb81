package main

import "github.com/olivierh59500/particle-network/cmd"

func main() {
	cmd.Execute()
}
