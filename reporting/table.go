package reporting

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-testbridge/types"
	"github.com/ethereum-optimism/infra/op-testbridge/ui"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter renders a RunResult as an ASCII table
type TableFormatter struct {
	title       string
	showMethods bool
}

func NewTableFormatter(title string, showMethods bool) *TableFormatter {
	return &TableFormatter{title: title, showMethods: showMethods}
}

// Format renders the result
func (f *TableFormatter) Format(result *RunResult) string {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(f.title)
	t.AppendHeader(table.Row{"TYPE", "ID", "DURATION", "TESTS", "PASSED", "FAILED", "SKIPPED", "STATUS"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "TYPE", AutoMerge: true},
		{Name: "ID", WidthMax: 200, WidthMaxEnforcer: text.WrapSoft},
		{Name: "DURATION", Align: text.AlignRight},
		{Name: "TESTS", Align: text.AlignRight},
		{Name: "PASSED", Align: text.AlignRight},
		{Name: "FAILED", Align: text.AlignRight},
		{Name: "SKIPPED", Align: text.AlignRight},
	})

	for _, set := range result.Sets {
		t.AppendRow(table.Row{
			"Test",
			setLabel(set),
			formatDuration(set.Duration),
			set.Stats.Total,
			set.Stats.Passed,
			set.Stats.Failed,
			set.Stats.Skipped,
			strings.ToUpper(string(set.Status)),
		})
		children := len(set.ConfigFailures)
		if f.showMethods {
			children += len(set.Methods)
		}
		row := 0
		for _, cf := range set.ConfigFailures {
			row++
			t.AppendRow(table.Row{
				"Config",
				fmt.Sprintf("%s[%s] %s", ui.BuildTreePrefix(1, row == children, nil), cf.Phase, cf.Entry),
				formatDuration(cf.Entry.Elapsed),
				"", "", "", "",
				strings.ToUpper(string(types.TestStatusFail)),
			})
		}
		if !f.showMethods {
			continue
		}
		for _, m := range set.Methods {
			row++
			t.AppendRow(table.Row{
				"Method",
				ui.BuildTreePrefix(1, row == children, nil) + types.GetTestDisplayName(m.Method, m.Class),
				formatDuration(m.Duration),
				"", "", "", "",
				strings.ToUpper(string(m.Status)),
			})
		}
		t.AppendSeparator()
	}

	switch result.Status {
	case types.TestStatusFail:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	default:
		t.SetStyle(table.StyleDefault)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(result.Duration),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Skipped,
		strings.ToUpper(string(result.Status)),
	})

	t.Render()
	return buf.String()
}

func setLabel(set *TestSetResult) string {
	if set.Test == "" {
		return set.Suite
	}
	return set.Suite + " / " + set.Test
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}
