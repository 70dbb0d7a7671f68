package model

import "time"

// Operation names, also used as CLI subcommand names
const (
	OpMergeEquivalentSets = "merge-equivalent-sets"
	OpMergeSpecies        = "merge-species"
)

// Report is the outcome of one merge run
type Report struct {
	Operation  string    `json:"operation"`
	Input      string    `json:"input,omitempty"`
	Output     string    `json:"output,omitempty"`
	Reasoner   string    `json:"reasoner"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`

	Stats Stats `json:"stats"`

	Groups []GroupResult `json:"groups,omitempty"` // merge-equivalent-sets only
	Copies []CopyResult  `json:"copies,omitempty"` // merge-species only

	Signals []Signal `json:"signals,omitempty"`
}

// Stats counts what a run changed
type Stats struct {
	NodesBefore    int `json:"nodes_before"`
	NodesAfter     int `json:"nodes_after"`
	EdgesBefore    int `json:"edges_before"`
	EdgesAfter     int `json:"edges_after"`
	EdgesRewritten int `json:"edges_rewritten"`
	EdgesDropped   int `json:"edges_dropped"`
	NodesAbsorbed  int `json:"nodes_absorbed"`
	NodesPreserved int `json:"nodes_preserved"`
	CopiesCreated  int `json:"copies_created"`
	CopiesReplaced int `json:"copies_replaced"`
}

// GroupResult describes how one equivalence group was collapsed
type GroupResult struct {
	Representative string   `json:"representative"`
	Absorbed       []string `json:"absorbed,omitempty"`
	Preserved      []string `json:"preserved,omitempty"`
}

// CopyResult describes one taxon-specific copy
type CopyResult struct {
	Original string `json:"original"`
	Copy     string `json:"copy"`
	Label    string `json:"label,omitempty"`
	Replaced bool   `json:"replaced"`
}

// Signal is a notable event worth surfacing in the report
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the signal
type SignalType string

const (
	SignalDroppedEdge     SignalType = "dropped_edge"     // edge rejected by the store during rewriting
	SignalPreservedMember SignalType = "preserved_member" // preserved class kept next to its representative
	SignalReplacedCopy    SignalType = "replaced_copy"    // existing taxon copy rebuilt
	SignalEmptyRegion     SignalType = "empty_region"     // nothing to unfold for the taxon
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo    SignalSeverity = "info"
	SeverityWarning SignalSeverity = "warning"
)
