package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/common/expfmt"

	"github.com/dmitrijs2005/hospivibe/internal/buildinfo"
)

// Metrics prints the client request metrics in the Prometheus text format.
func (a *App) Metrics(_ context.Context, _ []string) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	if len(families) == 0 {
		a.printf("No requests recorded yet.")
		return nil
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	a.printf("%s", strings.TrimRight(buf.String(), "\n"))
	return nil
}

func (a *App) Version(_ context.Context, _ []string) error {
	var buf bytes.Buffer
	buildinfo.PrintBuildData(&buf)
	a.printf("%s", strings.TrimRight(buf.String(), "\n"))
	return nil
}
