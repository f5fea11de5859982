package ui

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RosterRow describes one participant for the room roster table.
type RosterRow struct {
	ConnID string
	Role   string
	Local  bool
}

// RenderRoster prints the current room membership as a table.
func RenderRoster(roomID string, rows []RosterRow) {
	if len(rows) == 0 {
		PrintInfo("Room is empty, waiting for peers to join")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s Room %s", IconRoom, roomID))
	t.AppendHeader(table.Row{"#", "Connection", "Role"})

	for i, row := range rows {
		conn := row.ConnID
		if row.Local {
			conn = conn + " (you)"
		}
		t.AppendRow(table.Row{i + 1, conn, row.Role})
	}

	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Style().Format.Header = text.FormatTitle
	t.Render()
}
