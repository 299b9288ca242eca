package export_test

import (
	"testing"

	"github.com/c360studio/sparqlexport/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFormatInfo(t *testing.T) {
	info, ok := export.GetFormatInfo(export.FormatNTriples)
	require.True(t, ok)
	assert.Equal(t, "application/n-triples", info.MIMEType)
	assert.Equal(t, ".nt", info.Extension)

	_, ok = export.GetFormatInfo("csv")
	assert.False(t, ok)
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName export.Format
		wantMIME string
		wantErr  bool
	}{
		{name: "registered name", input: "ntriples", wantName: export.FormatNTriples, wantMIME: "application/n-triples"},
		{name: "name is case insensitive", input: "Turtle", wantName: export.FormatTurtle, wantMIME: "text/turtle"},
		{name: "registered mime", input: "application/n-triples", wantName: export.FormatNTriples, wantMIME: "application/n-triples"},
		{name: "mime is case insensitive", input: "Application/LD+JSON", wantName: export.FormatJSONLD, wantMIME: "application/ld+json"},
		{name: "surrounding space", input: "  rdfxml ", wantName: export.FormatRDFXML, wantMIME: "application/rdf+xml"},
		{name: "custom mime passes through", input: "text/x-nquads", wantName: "", wantMIME: "text/x-nquads"},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown name", input: "csv", wantErr: true},
		{name: "half a mime", input: "text/", wantErr: true},
		{name: "mime with spaces", input: "text/turtle; charset=utf-8 x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := export.ResolveFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, info.Name)
			assert.Equal(t, tt.wantMIME, info.MIMEType)
		})
	}
}

func TestListFormatsSorted(t *testing.T) {
	formats := export.ListFormats()
	require.Len(t, formats, len(export.FormatRegistry))

	names := make([]export.Format, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	assert.Equal(t, []export.Format{
		export.FormatJSONLD,
		export.FormatNTriples,
		export.FormatRDFXML,
		export.FormatTurtle,
	}, names)
}
