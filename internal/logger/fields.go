package logger

// Standard field names for structured logging.
// Use these constants instead of raw strings to keep log queries stable.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldJobID     = "job_id"

	FieldDurationMS = "duration_ms"

	FieldError = "error"

	FieldCount      = "count"
	FieldTotalCount = "total_count"

	FieldFile   = "file"
	FieldFormat = "format"

	// Ontology-specific
	FieldNode           = "node"
	FieldEdge           = "edge"
	FieldGroup          = "group"
	FieldRepresentative = "representative"
	FieldTaxon          = "taxon"
	FieldProperty       = "property"
	FieldReasoner       = "reasoner"
)
