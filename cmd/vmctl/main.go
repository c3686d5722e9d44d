package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GriffinCanCode/VMConsole/internal/tui"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8000", "Base URL of the VM console server")
	flag.Parse()

	m := tui.New(tui.NewClient(*addr))
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
