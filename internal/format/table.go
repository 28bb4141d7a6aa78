package format

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"autotodo/internal/model"
)

// WriteTodoTable writes a human-readable listing of todos.
func WriteTodoTable(w io.Writer, todos []model.Todo) error {
	if len(todos) == 0 {
		_, err := fmt.Fprintln(w, "no todos")
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	done := color.New(color.FgGreen).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold(""), bold("ID"), bold("Text"), bold("Updated"))
	for _, t := range todos {
		mark := " "
		text := t.Text
		if t.Completed {
			mark = done("x")
		}
		if t.Archived {
			text = faint(text + " (archived)")
		}
		tbl.AddRow(mark, shortID(t.ID), text, t.UpdatedAt.Local().Format(time.DateTime))
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}

// WriteStats writes a one-line stats summary.
func WriteStats(w io.Writer, st model.Stats) error {
	_, err := fmt.Fprintf(w, "total %d  completed %d  pending %d  archived %d\n",
		st.Total, st.Completed, st.Pending, st.Archived)
	return err
}

// shortID keeps listings readable; full ids stay available via --json.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
