package launcher

import (
	"log/slog"

	"fedscan/internal/pipeline"
)

// Stage binary names. The launcher looks for them next to its own
// executable first, then on PATH.
const (
	BinMonthLinks   = "monthlinks"
	BinMessageLinks = "messagelinks"
	BinRawContents  = "rawcontents"
	BinMakeExcel    = "makeexcel"
)

// Step identifiers.
const (
	StepMonthLinks   = "month-links"
	StepMessageLinks = "message-links"
	StepRawContents  = "raw-contents"
	StepMakeExcel    = "make-excel"
)

// Plan is the resolved set of stage invocations for one run.
type Plan struct {
	Steps []*pipeline.CommandStep
}

// BuildPlan turns validated options into the four stage invocations, chained
// stage N -> stage N+1.
func BuildPlan(opts Options, logger *slog.Logger) *Plan {
	monthArgs := []string{opts.Company, "--start", opts.Start, "--end", opts.End}
	if opts.ForceRecreate {
		monthArgs = append(monthArgs, "--force-recreate")
	}

	var messageArgs []string
	if opts.ForceRecreate {
		messageArgs = append(messageArgs, "--force-recreate")
	}
	if opts.ShowBrowser {
		messageArgs = append(messageArgs, "--show")
	}

	var rawArgs []string
	if opts.ForceRecreate {
		rawArgs = append(rawArgs, "--force-recreate")
	}
	if opts.ShowBrowser {
		rawArgs = append(rawArgs, "--show")
	}

	var excelArgs []string
	if opts.OpenExcel {
		excelArgs = append(excelArgs, "--open")
	}

	return &Plan{Steps: []*pipeline.CommandStep{
		pipeline.NewCommandStep(StepMonthLinks, "Month-Link Collector",
			nil, BinMonthLinks, monthArgs, logger),
		pipeline.NewCommandStep(StepMessageLinks, "Message-Link Extractor",
			[]string{StepMonthLinks}, BinMessageLinks, messageArgs, logger),
		pipeline.NewCommandStep(StepRawContents, "Raw Content Fetcher",
			[]string{StepMessageLinks}, BinRawContents, rawArgs, logger),
		pipeline.NewCommandStep(StepMakeExcel, "Spreadsheet Compiler",
			[]string{StepRawContents}, BinMakeExcel, excelArgs, logger),
	}}
}

// Register adds all plan steps to a pipeline registry.
func (p *Plan) Register(registry *pipeline.Registry) error {
	for _, step := range p.Steps {
		if err := registry.Register(step); err != nil {
			return err
		}
	}
	return nil
}

// Invocations returns the binary and argument list per step, in order.
// Mostly useful for tests and for logging the resolved plan.
func (p *Plan) Invocations() [][]string {
	out := make([][]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		argv := append([]string{step.Binary()}, step.Args()...)
		out = append(out, argv)
	}
	return out
}
