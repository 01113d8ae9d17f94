package utils

import (
	"os"

	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"
)

func GetSizeCmd() tea.Cmd {
	return func() tea.Msg {
		w, h, _ := term.GetSize(int(os.Stdout.Fd()))
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}
