package reasoner

import (
	"context"
	"strings"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/ontology"
)

// FailureKind tells why an ontology was rejected before merging
type FailureKind string

const (
	Inconsistent  FailureKind = "inconsistent"
	Unsatisfiable FailureKind = "unsatisfiable"
)

// Failure reports that an ontology did not pass the reasoning check.
// Classes is set for Unsatisfiable.
type Failure struct {
	Kind    FailureKind
	Classes []string
}

func (f *Failure) Error() string {
	if f.Kind == Inconsistent {
		return "ontology is inconsistent"
	}
	return "ontology has unsatisfiable classes: " + strings.Join(f.Classes, " ")
}

// AsFailure extracts a *Failure from err
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Verify checks that r reports a consistent ontology with no unsatisfiable
// classes
func Verify(r Reasoner) error {
	if !r.IsConsistent() {
		return errors.WithStack(&Failure{Kind: Inconsistent})
	}
	if u := r.UnsatisfiableClasses(); len(u) > 0 {
		return errors.WithStack(&Failure{Kind: Unsatisfiable, Classes: u})
	}
	return nil
}

// Check classifies s with factory and verifies the result. The reasoner is
// returned for further queries only when the check passes.
func Check(ctx context.Context, s ontology.Store, factory Factory) (Reasoner, error) {
	log := logger.ComponentLogger("reasoner")

	r, err := factory(ctx, s)
	if err != nil {
		return nil, errors.Wrap(err, "reasoner failed")
	}
	if err := Verify(r); err != nil {
		log.Warnw("Ontology rejected by reasoner",
			logger.FieldReasoner, r.Name(),
			logger.FieldError, err.Error(),
		)
		return nil, err
	}
	return r, nil
}
