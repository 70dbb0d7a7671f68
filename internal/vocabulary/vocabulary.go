// Package vocabulary defines the well-known terms ontomerge reads and writes,
// expressed as CURIEs, and helpers for splitting identifiers into prefix and
// local id.
package vocabulary

import "strings"

// OBOPurl is the namespace of OBO Foundry term IRIs.
const OBOPurl = "http://purl.obolibrary.org/obo/"

// Built-in predicates.
const (
	SubClassOf   = "rdfs:subClassOf"
	EquivalentTo = "owl:equivalentClass"
	DisjointWith = "owl:disjointWith"
)

// Annotation properties with dedicated priority options.
const (
	Label      = "rdfs:label"
	Comment    = "rdfs:comment"
	Definition = "IAO:0000115"
)

// Well-known classes and object properties.
const (
	Thing    = "owl:Thing"
	Nothing  = "owl:Nothing"
	PartOf   = "BFO:0000050"
	InTaxon  = "RO:0002162"
	Organism = "NCBITaxon:1"
)

// IsHierarchy reports whether predicate is a class-axiom predicate rather
// than an object property.
func IsHierarchy(predicate string) bool {
	switch predicate {
	case SubClassOf, EquivalentTo, DisjointWith:
		return true
	}
	return false
}

// IsBuiltin reports whether id is an OWL/RDFS built-in term.
func IsBuiltin(id string) bool {
	p := Prefix(id)
	return p == "owl" || p == "rdfs" || p == "rdf"
}

// Split separates an identifier into prefix and local id.
//
// CURIEs split on the first colon ("UBERON:0002398" -> "UBERON", "0002398").
// OBO PURLs split on the last underscore of the path
// ("http://purl.obolibrary.org/obo/UBERON_0002398" -> "UBERON", "0002398").
// Other IRIs yield an empty prefix.
func Split(id string) (prefix, local string) {
	if rest, ok := strings.CutPrefix(id, OBOPurl); ok {
		if i := strings.LastIndex(rest, "_"); i > 0 {
			return rest[:i], rest[i+1:]
		}
		return "", rest
	}
	if strings.Contains(id, "://") {
		return "", id
	}
	if i := strings.Index(id, ":"); i > 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// Prefix returns the prefix part of id, see Split.
func Prefix(id string) string {
	p, _ := Split(id)
	return p
}

// Compact rewrites OBO PURLs into CURIE form and leaves everything else as is.
func Compact(id string) string {
	if !strings.HasPrefix(id, OBOPurl) {
		return id
	}
	p, l := Split(id)
	if p == "" {
		return id
	}
	return p + ":" + l
}
