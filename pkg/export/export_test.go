package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterKeepsRowOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"location", "description"},
		Rows: []map[string]string{
			{"location": "Pole 1", "description": "cracks, chips"},
			{"location": "Span 1-2", "description": "sag"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	require.Equal(t, "location,description\nPole 1,\"cracks, chips\"\nSpan 1-2,sag\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVExporterCustomComma(t *testing.T) {
	out, err := (&CSVExporter{Comma: ';'}).Render(Dataset{Headers: []string{"a", "b"}, Rows: []map[string]string{{"a": "1", "b": "2"}}})
	require.NoError(t, err)
	require.Equal(t, "a;b\n1;2\n", string(out))
}

func TestPDFExporterRenderSheet(t *testing.T) {
	doc := SheetDocument{
		Title:  "Inspection sheet",
		Fields: []Field{{Label: "Object", Value: "Line 01"}, {Label: "Status", Value: "approved"}},
		Table: Dataset{
			Headers: []string{"#", "Location", "Description", "Severity"},
			Rows:    []map[string]string{{"#": "1", "Location": "Pole 1", "Description": "cracks", "Severity": "medium"}},
		},
		Signatures: []Field{{Label: "Worker", Value: "Ivanov"}, {Label: "Master"}},
	}
	out, err := NewPDFExporter().RenderSheet(doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().RenderSheet(SheetDocument{})
	require.Error(t, err)
}
