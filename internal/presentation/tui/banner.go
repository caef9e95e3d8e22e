package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the rigmate ASCII banner for the interactive chat.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-lime gradient, top to bottom
	s1 := termenv.String("  ____  _                        _       ").Foreground(p.Color("#22d3ee"))
	s2 := termenv.String(" |  _ \\(_)  __ _ _ __ ___   __ _| |_ ___ ").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String(" | |_) | | / _` | '_ ` _ \\ / _` | __/ _ \\").Foreground(p.Color("#34d399"))
	s4 := termenv.String(" |  _ <| || (_| | | | | | | (_| | ||  __/").Foreground(p.Color("#4ade80"))
	s5 := termenv.String(" |_| \\_\\_| \\__, |_| |_| |_|\\__,_|\\__\\___|").Foreground(p.Color("#a3e635"))
	s6 := termenv.String("           |___/                         ").Foreground(p.Color("#facc15"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
