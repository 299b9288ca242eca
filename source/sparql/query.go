// Package sparql issues SPARQL CONSTRUCT queries over the SPARQL 1.1
// protocol's form-encoded POST binding and returns the raw serialized graph.
package sparql

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// NobelLaureatesQuery builds a graph of Nobel laureates, their prizes, the
// English prize labels and the award years.
const NobelLaureatesQuery = `
PREFIX nobel: <http://data.nobelprize.org/terms/>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
CONSTRUCT {
  ?person rdf:type nobel:Laureate ;
    rdfs:label ?name ;
    nobel:nobelPrize ?prize .
  ?prize rdfs:label ?prizeName ;
    nobel:year ?year .
}
WHERE {
  ?person rdf:type nobel:Laureate ;
    rdfs:label ?name ;
    nobel:nobelPrize ?prize .
  ?prize rdfs:label ?prizeName ;
    nobel:year ?year .
  FILTER (lang(?prizeName) = 'en')
}
`

// Request pairs a query with the serialization the endpoint should return.
type Request struct {
	Query string
	// Format is the MIME identifier, e.g. "application/n-triples".
	Format string
}

// Form encodes the request as the endpoint's POST body.
func (r Request) Form() url.Values {
	return url.Values{
		"query":  {r.Query},
		"format": {r.Format},
	}
}

// ResolveQuery picks the query text: inline text first, then the file,
// then NobelLaureatesQuery.
func ResolveQuery(text, file string) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	if file == "" {
		return NobelLaureatesQuery, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read query file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("query file %s is empty", file)
	}
	return string(data), nil
}
