package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFRenderProducesDocument(t *testing.T) {
	exporter := NewPDFExporter("Bethel School Portal")

	payload, err := exporter.Render(Table{
		Title:   "Attendance report",
		Columns: []string{"Student ID", "Name"},
		Rows:    [][]string{{"STU-001", "Amara Obi"}},
	}, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF-", string(payload[:5]))
}

func TestPDFRenderRejectsRaggedRows(t *testing.T) {
	exporter := NewPDFExporter("Bethel School Portal")

	_, err := exporter.Render(Table{
		Columns: []string{"Month", "Total"},
		Rows:    [][]string{{"2026-03", "120", "extra"}},
	}, time.Now())
	require.Error(t, err)
}
