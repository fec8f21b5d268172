package main

import "claimbot/cmd"

func main() {
	cmd.Execute()
}
