package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/timeseries"
)

const windowCustom = "custom"

// windowFlags are the time-window flags shared by trend, export and
// dashboard.
type windowFlags struct {
	window string
	last   int
	from   string
	to     string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.window, "window", "",
		"bucket granularity: day, week, month, year or custom (default from reporting.default_window)")
	cmd.Flags().IntVar(&f.last, "last", 0,
		"number of periods (default 30 days, 12 weeks, 12 months or 5 years)")
	cmd.Flags().StringVar(&f.from, "from", "", "custom range start date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&f.to, "to", "", "custom range end date (YYYY-MM-DD), inclusive; defaults to today")
}

// resolve builds the window. --from selects a custom range even without
// --window custom; a custom range buckets monthly unless another
// granularity was named.
func (f *windowFlags) resolve(defaultWindow string, now time.Time) (timeseries.Window, error) {
	name := strings.ToLower(strings.TrimSpace(f.window))
	custom := name == windowCustom || f.from != ""

	if custom {
		return f.customRange(name, now)
	}
	if f.to != "" {
		return timeseries.Window{}, errors.New("--to requires --from")
	}

	if name == "" {
		name = defaultWindow
	}
	g, err := timeseries.ParseGranularity(name)
	if err != nil {
		return timeseries.Window{}, err
	}
	if f.last < 0 {
		return timeseries.Window{}, fmt.Errorf("%w: --last must be positive", timeseries.ErrInvalidWindow)
	}
	w := timeseries.DefaultWindow(g)
	if f.last > 0 {
		w.Last = f.last
	}
	if err = w.Validate(); err != nil {
		return timeseries.Window{}, fmt.Errorf("--last: %w", err)
	}
	return w, nil
}

func (f *windowFlags) customRange(name string, now time.Time) (timeseries.Window, error) {
	if f.from == "" {
		return timeseries.Window{}, errors.New("--window custom requires --from")
	}
	start, err := emissions.ParseDate(f.from)
	if err != nil {
		return timeseries.Window{}, fmt.Errorf("--from: %w", err)
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if f.to != "" {
		if end, err = emissions.ParseDate(f.to); err != nil {
			return timeseries.Window{}, fmt.Errorf("--to: %w", err)
		}
	}

	var gs []timeseries.Granularity
	if name != "" && name != windowCustom {
		g, perr := timeseries.ParseGranularity(name)
		if perr != nil {
			return timeseries.Window{}, perr
		}
		gs = append(gs, g)
	}
	// An end before the start yields an empty series rather than an error.
	w := timeseries.CustomRange(start, end, gs...)
	if err = w.Bounded(); err != nil {
		return timeseries.Window{}, err
	}
	return w, nil
}
