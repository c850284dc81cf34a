package main

import "panebot/internal/cmd"

func main() {
	cmd.Execute()
}
