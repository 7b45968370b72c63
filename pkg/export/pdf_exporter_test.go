package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(registerDataset(), "Mathematics grade 7-A")
	require.NoError(t, err)
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF")
}

func TestPDFExporterNoHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "empty")
	assert.Error(t, err)
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths(registerDataset())
	require.Len(t, widths, 3)
	assert.InDelta(t, tableWidth/4, widths[0], 0.001)
	assert.InDelta(t, tableWidth/2, widths[1], 0.001)

	// Missing or non-positive weights fall back to an equal share.
	even := columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{0}})
	assert.InDelta(t, tableWidth/2, even[0], 0.001)
	assert.InDelta(t, tableWidth/2, even[1], 0.001)
}
