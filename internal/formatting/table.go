package formatting

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mockspec/pkg/logging"
)

// createTable creates a new table with standard styling
func createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// WriteTable renders one row per endpoint followed by a total line.
func WriteTable(w io.Writer, summaries []Summary) {
	if len(summaries) == 0 {
		fmt.Fprintf(w, "%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint("No endpoints defined"))
		return
	}

	t := createTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ENDPOINT"),
		text.FgHiCyan.Sprint("TRANSPORT"),
		text.FgHiCyan.Sprint("ORDERING"),
		text.FgHiCyan.Sprint("ENDPOINT ORDERED"),
		text.FgHiCyan.Sprint("EXPECTED"),
		text.FgHiCyan.Sprint("LENIENT"),
		text.FgHiCyan.Sprint("TIMEOUT"),
	})

	total := 0
	for _, s := range summaries {
		lenient := "-"
		if s.Lenient {
			lenient = fmt.Sprintf("%d responses", s.LenientResponses)
		}
		t.AppendRow(table.Row{
			s.Endpoint,
			s.Transport,
			s.Ordering,
			strconv.FormatBool(s.EndpointOrdered),
			s.Expected,
			lenient,
			s.AssertionTimeout,
		})
		total += s.Expected
	}
	t.Render()

	fmt.Fprintf(w, "\n%s %s %s %s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprint(len(summaries)),
		text.FgHiBlue.Sprint("endpoints,"),
		text.FgHiWhite.Sprint(total),
		text.FgHiBlue.Sprint("expected messages"))
}

// WriteAdvisories lists captured warnings beneath a summary.
func WriteAdvisories(w io.Writer, entries []logging.LogEntry) {
	if len(entries) == 0 {
		return
	}

	t := createTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("LEVEL"),
		text.FgHiCyan.Sprint("SUBSYSTEM"),
		text.FgHiCyan.Sprint("ADVISORY"),
	})
	for _, e := range entries {
		t.AppendRow(table.Row{text.FgYellow.Sprint(e.Level.String()), e.Subsystem, e.Message})
	}
	t.Render()
}
