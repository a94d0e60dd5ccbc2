// Command go-markov composes music by weighted random choice.
//
// Usage:
//
//	go-markov [flags] <command> [args]
//
// Commands:
//
//	generate     - Compose a piece and write a MIDI file
//	play         - Play a piece on a MIDI output port
//	tui          - Interactive composer
//	ports        - List MIDI output ports
//	saves        - List, export, rename and delete saved pieces
//	config       - Show or create the config file
//	instruments  - List instrument names
package main

import (
	"fmt"
	"os"

	"go-markov/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
