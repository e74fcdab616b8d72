package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/uniformdesk/uniformdesk/internal/reconcile"
	"github.com/uniformdesk/uniformdesk/internal/stock"
)

// ReportSource produces reconciliation reports.
type ReportSource interface {
	Report(ctx context.Context, filter stock.ReportFilter) (reconcile.Report, error)
}

// ReportOptions defines available flags for the report command.
type ReportOptions struct {
	From       string
	To         string
	JSONOutput bool
	// FailOnOutOfStock makes the command exit with code 10 when any variant
	// has no available units.
	FailOnOutOfStock bool
	Stdout           io.Writer
	Stderr           io.Writer
}

// ReportCommand prints the reconciled ledger and health summary.
func ReportCommand(ctx context.Context, source ReportSource, opts ReportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	report, err := source.Report(ctx, stock.ReportFilter{From: opts.From, To: opts.To})
	if err != nil {
		if errors.Is(err, stock.ErrInvalidWindow) {
			_, _ = fmt.Fprintf(opts.Stderr, "report: %v (expected YYYY-MM-DD)\n", err)
		} else {
			_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
		}
		return 1
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(report); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: encode json: %v\n", err)
			return 1
		}
	} else {
		renderReportHuman(opts.Stdout, report)
	}
	if opts.FailOnOutOfStock && report.Health.OutOfStock > 0 {
		return 10
	}
	return 0
}

func renderReportHuman(w io.Writer, report reconcile.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ITEM\tSIZE\tBEGIN\tUNREL\tPURCH\tREL\tRET\tAVAIL\tEND\tAMOUNT\tSTATUS")
	for _, row := range report.Rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			row.Name, row.Size, row.BeginningInventory, row.Unreleased, row.Purchases,
			row.Released, row.Returns, row.Available, row.EndingInventory,
			row.TotalAmount.StringFixed(2), row.Status)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "\n%d groups, %d variants, %d at reorder point, %d out of stock\n",
		len(report.Groups), report.Health.TotalItemVariants, report.Health.AtReorderPoint, report.Health.OutOfStock)
}
