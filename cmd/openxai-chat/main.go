package main

import "github.com/openxai/openxai-chat/internal/commands"

func main() {
	commands.Execute()
}
