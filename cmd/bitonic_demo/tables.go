// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/gomlx/bitonic/backends"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)

	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
	passedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"})
)

// newPlainTable creates a table with alternating row styles. The last alignment is used for the
// remaining columns.
func newPlainTable(alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			switch {
			case row < 0:
				s = headerRowStyle
				return
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			} else if len(alignments) > 0 {
				alignment = alignments[len(alignments)-1]
			}
			return s.Align(alignment)
		})
}

func printBackendInfo(backend backends.Backend) {
	info := backend.Info()
	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Row("Backend", fmt.Sprintf("%s (%s)", backend.Name(), backend.Description()))
	table.Row("Host", info.Host)
	for _, field := range [][2]string{{"Device", info.Backend}, {"Adapter", info.Adapter}, {"Driver", info.Driver}} {
		if field[1] != "" {
			table.Row(field[0], field[1])
		}
	}
	fmt.Println(table.Render())
}
