package console

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"stock-watch/internal/app"
)

type Options struct {
	Title   string
	Version string
}

const (
	normalHelp = "quit[q] | new[n CODE] | delete[d] | refresh[r] | up[u] | down[j] | select[sel N, k, down]"
	addingHelp = "confirm[Enter] | cancel[Esc] | code e.g. 600519, 000001, NVDA, x105.AAPL"
)

// Render writes one frame: a status line, the entry table and the key help.
func Render(w io.Writer, v app.View, opts Options) error {
	status := "last refresh -"
	if !v.LastRefresh.IsZero() {
		status = "last refresh " + v.LastRefresh.Local().Format("15:04:05")
	}
	if v.Error != "" {
		status = "error: " + v.Error
	}
	if _, err := fmt.Fprintf(w, "%s %s  [%s]  %s\n", opts.Title, opts.Version, v.State, status); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tCODE\tTITLE\tPRICE\t%CHG\tCHG\tHIGH\tLOW\tVOLUME\tAMOUNT\t")
	for i, e := range v.Entries {
		mark := " "
		if i == v.Selected {
			mark = ">"
		}
		q := e.Quote
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%%\t%s\t%s\t%s\t%s\t%s\t\n",
			mark, e.Code, q.Title,
			fixed(q.Price), signed(q.PercentChange), signed(q.Change),
			fixed(q.High), fixed(q.Low),
			humanize.Comma(int64(q.Volume)), humanize.CommafWithDigits(q.Amount, 0),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if v.State == app.StateAdding {
		_, err := fmt.Fprintf(w, "add> %s\n%s\n", v.Input, addingHelp)
		return err
	}
	_, err := fmt.Fprintln(w, normalHelp)
	return err
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func signed(v float64) string {
	s := fixed(v)
	if v > 0 {
		return "+" + s
	}
	return s
}
