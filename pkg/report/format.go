package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/walteh/ffmigrate/pkg/store"
)

// Formatter defines how store outcomes and the run summary are rendered.
type Formatter interface {
	// FormatStoreResult formats the one-line status of a store
	FormatStoreResult(res StoreResult, dryRun bool) string

	// FormatChange formats one before/after pair
	FormatChange(ch store.Change) string

	// FormatSummary formats the overall success/failure line
	FormatSummary(r *Report, dryRun bool) string
}

// DefaultFormatter provides a default implementation of Formatter. Dry-run
// and real-run output differ only in the would-change/changed verb, so a
// dry run reads as an exact preview of the real run.
type DefaultFormatter struct{}

func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

func (f *DefaultFormatter) FormatStoreResult(res StoreResult, dryRun bool) string {
	verb := "changed"
	if dryRun {
		verb = "would change"
	}
	switch res.Status {
	case StatusSkipped:
		return fmt.Sprintf("⏭️  %s: not present (%s)", res.Store, res.Path)
	case StatusFailed:
		return fmt.Sprintf("❌ %s: %d candidates, %d %s, failed: %v", res.Store, res.Candidates, len(res.Changes), verb, res.Err)
	default:
		return fmt.Sprintf("✅ %s: %d candidates, %d %s", res.Store, res.Candidates, len(res.Changes), verb)
	}
}

func (f *DefaultFormatter) FormatChange(ch store.Change) string {
	return fmt.Sprintf("    %s: %s → %s", ch.Loc, ch.Old, ch.New)
}

func (f *DefaultFormatter) FormatSummary(r *Report, dryRun bool) string {
	verb := "applied"
	if dryRun {
		verb = "would apply"
	}
	if !r.OK() {
		return fmt.Sprintf("❌ %d/%d stores failed: %v", len(r.FailedStores()), len(r.Results()), r.FailedStores())
	}
	return fmt.Sprintf("✅ scanned %d candidates, %s %d changes in %s",
		r.TotalCandidates(), verb, r.TotalChanges(), r.Elapsed().Round(time.Millisecond))
}

// 📢 Printer writes a full report to a console with pterm prefix printers,
// one block per store followed by the summary line.
type Printer struct {
	out       io.Writer
	formatter Formatter
	verbose   bool
}

// NewPrinter creates a printer. With verbose set, every before/after pair is
// listed; otherwise only per-store counts appear.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, formatter: NewDefaultFormatter(), verbose: verbose}
}

// Print renders each store block and the summary.
func (p *Printer) Print(r *Report, dryRun bool) {
	for _, res := range r.Results() {
		printer := p.printerFor(res.Status)
		printer.Println(p.formatter.FormatStoreResult(res, dryRun))

		if p.verbose || dryRun {
			for _, ch := range res.Changes {
				fmt.Fprintln(p.out, color.New(color.FgCyan).Sprint(p.formatter.FormatChange(ch)))
			}
		}
	}

	summary := p.formatter.FormatSummary(r, dryRun)
	if r.OK() {
		pterm.Success.WithWriter(p.out).Println(summary)
	} else {
		pterm.Error.WithWriter(p.out).Println(summary)
	}
}

func (p *Printer) printerFor(s Status) *pterm.PrefixPrinter {
	switch s {
	case StatusApplied:
		return pterm.Success.WithWriter(p.out)
	case StatusSimulated:
		return pterm.Info.WithWriter(p.out)
	case StatusFailed:
		return pterm.Error.WithWriter(p.out)
	default:
		return pterm.Info.WithWriter(p.out)
	}
}
