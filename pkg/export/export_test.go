package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timetableDataset() Dataset {
	return Dataset{
		Headers: []string{"Slot", "Monday", "Tuesday"},
		Rows: [][]string{
			{"Jam ke-1", "Matematika (R101)", "Bahasa Indonesia (R102)"},
			{"Jam ke-2", "Fisika (Lab 1)"},
		},
	}
}

func TestCSVExporterRendersPositionalRows(t *testing.T) {
	out, err := NewCSVExporter().Render(timetableDataset())
	require.NoError(t, err)

	assert.Contains(t, string(out), "Slot,Monday,Tuesday")
	assert.Contains(t, string(out), "Jam ke-1,Matematika (R101),Bahasa Indonesia (R102)")
	// short rows are padded to the header width
	assert.Contains(t, string(out), "Jam ke-2,Fisika (Lab 1),")
}

func TestCSVExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(timetableDataset(), "Class Timetable X-A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
