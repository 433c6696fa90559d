package solver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSegmentReport(t *testing.T) {
	result := &Result{
		Name:             "layer_3",
		Segments:         3,
		PeakTemperatures: []float64{450.2, 1820.7, 1790.1},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSegmentReport(&buf, result, 1673))

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "peak temperature")
	assert.Contains(t, html, "layer_3")
	assert.Contains(t, html, "melt temperature")
	assert.Contains(t, html, "1820.7")
}

func TestRenderSegmentReportNoMeltLine(t *testing.T) {
	result := &Result{Name: "cold", Segments: 1, PeakTemperatures: []float64{310}}

	var buf bytes.Buffer
	require.NoError(t, RenderSegmentReport(&buf, result, 0))
	assert.False(t, strings.Contains(buf.String(), "melt temperature"))
}

func TestRenderSegmentReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderSegmentReport(&buf, &Result{}, 0))
	assert.Error(t, RenderSegmentReport(&buf, nil, 0))
}

func TestWriteSegmentReportCreatesDirectories(t *testing.T) {
	result := &Result{Name: "layer_0", Segments: 1, PeakTemperatures: []float64{900}}
	path := filepath.Join(t.TempDir(), "reports", "layer_0.html")

	require.NoError(t, WriteSegmentReport(path, result, 1673))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
