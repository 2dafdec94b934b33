package launcher

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads interactive answers. It wraps arbitrary reader/writer pairs
// so tests can script a session.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// String asks for a line of input, returning def when the answer is blank.
func (p *Prompter) String(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// YesNo asks a yes/no question. Blank input returns def; anything starting
// with y or Y (or the Russian д) counts as yes.
func (p *Prompter) YesNo(label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", label, hint)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return def
	}
	return strings.HasPrefix(line, "y") || strings.HasPrefix(line, "д")
}

// Collect fills the options a flag did not already provide. Values given on
// the command line are shown as defaults and kept on blank input; a blank
// start bound falls back to defaultStart, then DefaultStartMonth.
func (p *Prompter) Collect(opts *Options, defaultStart, currentMonth string) {
	opts.Company = p.String("Company name", opts.Company)

	startDef := opts.Start
	if startDef == "" {
		startDef = defaultStart
	}
	if startDef == "" {
		startDef = DefaultStartMonth
	}
	opts.Start = p.String("Start month (YYYY-MM)", startDef)

	endDef := opts.End
	if endDef == "" {
		endDef = currentMonth
	}
	opts.End = p.String("End month (YYYY-MM)", endDef)

	opts.ForceRecreate = p.YesNo("Recreate cached link files", opts.ForceRecreate)
	opts.ShowBrowser = p.YesNo("Show browser window", opts.ShowBrowser)
	opts.OpenExcel = p.YesNo("Open the spreadsheet when done", opts.OpenExcel)
}
