package export

import (
	"io"
	"os"
	"strconv"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/reconciler"
)

// WriteReportFile writes the run report to path.
func WriteReportFile(path string, res *reconciler.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := WriteReport(f, res); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}

// WriteReport renders res as markdown.
func WriteReport(w io.Writer, res *reconciler.Result) error {
	doc := md.NewMarkdown(w)

	doc.H1("Reconciliation report").LF()
	doc.BulletList(
		"Run: "+md.Code(res.RunID),
		"Started: "+res.Metadata.StartTime.Format(time.RFC3339),
		"Duration: "+res.Metadata.Duration.Round(time.Millisecond).String(),
		"Canonical rows: "+strconv.Itoa(res.Inventory.Len()),
	).LF()
	doc.PlainText(res.Summary()).LF()

	doc.H2("Suppliers").LF()
	rows := make([][]string, 0, len(res.Suppliers))
	for _, o := range res.Suppliers {
		updated := ""
		if !o.UpdatedAt.IsZero() {
			updated = o.UpdatedAt.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			string(o.Code),
			o.Name,
			string(o.Status),
			strconv.Itoa(o.Rows),
			strconv.Itoa(o.Stats.Dropped()),
			strconv.Itoa(o.Stats.Clamped),
			strconv.Itoa(o.Stats.Thresholded),
			updated,
			o.Reason,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Code", "Name", "Status", "Rows", "Dropped", "Clamped", "Thresholded", "Updated", "Reason"},
		Rows:   rows,
	}).LF()

	s := res.Stats
	doc.H2("Corrections").LF()
	doc.Table(md.TableSet{
		Header: []string{"Reason", "Rows"},
		Rows: [][]string{
			{"dropped", strconv.Itoa(s.Dropped)},
			{"clamped", strconv.Itoa(s.Clamped)},
			{"thresholded", strconv.Itoa(s.Thresholded)},
			{"backordered", strconv.Itoa(s.Backordered)},
			{"suppressed", strconv.Itoa(s.Suppressed)},
			{"display corrected", strconv.Itoa(s.DisplayCorrected)},
			{"orders corrected", strconv.Itoa(s.OrdersCorrected)},
		},
	}).LF()

	if len(res.Staleness) > 0 {
		doc.H2("Stale suppliers").LF()
		items := make([]string, len(res.Staleness))
		for i, st := range res.Staleness {
			items[i] = st.Warning().Error()
		}
		doc.BulletList(items...).LF()
	}
	if len(res.Errors) > 0 {
		doc.H2("Errors").LF()
		doc.BulletList(messages(res.Errors)...).LF()
	}
	if len(res.Warnings) > 0 {
		doc.H2("Warnings").LF()
		doc.BulletList(messages(res.Warnings)...).LF()
	}
	return doc.Build()
}

func messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
