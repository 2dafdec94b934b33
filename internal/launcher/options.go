// Package launcher implements the interactive front door of the pipeline:
// collecting run options, applying defaults once, and turning them into the
// stage invocations executed by the pipeline manager.
package launcher

import (
	"strings"
	"time"

	"fedscan/internal/apperrors"
	"fedscan/internal/fedresurs"
)

// DefaultStartMonth is the fallback start bound when neither the user nor
// the configuration supplies one.
const DefaultStartMonth = "2023-04"

// Options is the explicit configuration of one pipeline run. Defaulting
// happens exactly once, in ApplyDefaults; everything downstream reads the
// resolved values.
type Options struct {
	Company       string
	Start         string // YYYY-MM
	End           string // YYYY-MM
	ShowBrowser   bool
	ForceRecreate bool
	OpenExcel     bool

	// NonInteractive suppresses all prompts; missing required values fail
	// instead of being asked for.
	NonInteractive bool
}

// ApplyDefaults fills blank date bounds: start defaults to defaultStart,
// normally the configured scrape.default_start (DefaultStartMonth when that
// is blank too), end defaults to the current month.
func (o *Options) ApplyDefaults(now time.Time, defaultStart string) {
	o.Company = strings.TrimSpace(o.Company)
	if strings.TrimSpace(defaultStart) == "" {
		defaultStart = DefaultStartMonth
	}
	if strings.TrimSpace(o.Start) == "" {
		o.Start = defaultStart
	}
	if strings.TrimSpace(o.End) == "" {
		o.End = now.Format("2006-01")
	}
}

// Validate rejects runs that must not reach any stage process: a blank
// company name and malformed or inverted month bounds.
func (o *Options) Validate() error {
	if o.Company == "" {
		return apperrors.ErrCompanyRequired
	}

	start, err := fedresurs.ParseMonth(o.Start)
	if err != nil {
		return err
	}
	end, err := fedresurs.ParseMonth(o.End)
	if err != nil {
		return err
	}
	if start.After(end) {
		return &RangeError{Start: o.Start, End: o.End}
	}
	return nil
}

// RangeError reports an inverted month range.
type RangeError struct {
	Start, End string
}

func (e *RangeError) Error() string {
	return "start month " + e.Start + " is after end month " + e.End
}
