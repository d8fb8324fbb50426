package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func heading(title string) {
	fmt.Println(headingStyle.Render(title))
}

func success(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

func warn(format string, args ...any) {
	fmt.Println(warnStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

func failure(format string, args ...any) {
	fmt.Println(errorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}

// emit prints v as JSON or Toon when requested and reports whether it did
func emit(v any, asJSON, asToon bool) (bool, error) {
	if asJSON {
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return true, nil
	}

	if asToon {
		// Toon keys follow the json tags
		data, err := json.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		output, err := gotoon.Encode(generic)
		if err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return true, nil
	}

	return false, nil
}
