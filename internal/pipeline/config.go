package pipeline

import (
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/score"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
)

// ScoreSet parses the priority lists of cfg into score tables. Option names
// in errors match the command-line flags.
func ScoreSet(cfg model.EquivalenceConfig) (*score.Set, score.PrefixSet, error) {
	set := score.NewSet()

	identity, err := score.ParsePriorities("iri-priority", cfg.IRIPriority)
	if err != nil {
		return nil, nil, err
	}
	set.Identity = identity

	for _, kind := range []struct {
		option string
		id     string
		raw    []string
	}{
		{"label-priority", vocabulary.Label, cfg.LabelPriority},
		{"comment-priority", vocabulary.Comment, cfg.CommentPriority},
		{"definition-priority", vocabulary.Definition, cfg.DefinitionPriority},
	} {
		t, err := score.ParsePriorities(kind.option, kind.raw)
		if err != nil {
			return nil, nil, err
		}
		set.SetAnnotation(kind.id, t)
	}

	return set, score.NewPrefixSet(cfg.Preserve...), nil
}
