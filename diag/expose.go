package diag

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// WriteText gathers g and writes every family in the Prometheus text
// exposition format. Used by the CLI to dump metrics after a one-shot run
// where there is no scrape endpoint.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("diag: gather: %w", err)
	}
	for _, mf := range mfs {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("diag: write %s: %w", mf.GetName(), err)
		}
	}

	return nil
}
