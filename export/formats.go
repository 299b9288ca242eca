// Package export maps RDF serialization names to the identifiers SPARQL
// endpoints expect and persists exported datasets to disk.
package export

import (
	"fmt"
	"sort"
	"strings"
)

// Format is a short serialization name such as "ntriples".
type Format string

const (
	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatRDFXML produces RDF/XML (.rdf) output.
	FormatRDFXML Format = "rdfxml"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is sent as the endpoint's "format" parameter and Accept header.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatRDFXML: {
		Name:        FormatRDFXML,
		MIMEType:    "application/rdf+xml",
		Extension:   ".rdf",
		Description: "RDF/XML - XML serialization of RDF",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ResolveFormat turns a user-supplied format into registry metadata.
//
// s may be a registered name ("ntriples"), a registered MIME type
// ("application/n-triples"), or any other "type/subtype" string, which is
// passed through unchanged with an empty Name and Extension so endpoints
// with non-standard serializations stay reachable.
func ResolveFormat(s string) (FormatInfo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FormatInfo{}, fmt.Errorf("empty format")
	}

	if info, ok := FormatRegistry[Format(strings.ToLower(s))]; ok {
		return info, nil
	}

	for _, info := range FormatRegistry {
		if strings.EqualFold(info.MIMEType, s) {
			return info, nil
		}
	}

	if typ, sub, ok := strings.Cut(s, "/"); ok && typ != "" && sub != "" && !strings.ContainsAny(s, " \t\r\n") {
		return FormatInfo{MIMEType: s, Description: "Custom serialization"}, nil
	}

	return FormatInfo{}, fmt.Errorf("unsupported format: %s", s)
}

// ListFormats returns all registered formats sorted by name.
func ListFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(FormatRegistry))
	for _, info := range FormatRegistry {
		formats = append(formats, info)
	}
	sort.Slice(formats, func(i, j int) bool {
		return formats[i].Name < formats[j].Name
	})
	return formats
}
