package unfold

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/ontology"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
	"go.uber.org/zap"
)

// copier builds the copies of one region
type copier struct {
	store   ontology.Store
	spec    Spec
	naming  naming
	region  map[string]bool
	seeds   map[string]bool
	include map[string]bool
	logger  *zap.SugaredLogger
	result  *Result

	replaced map[string]bool
}

// declare creates the copy of id, or empties an existing one so that fill
// rebuilds it from scratch
func (c *copier) declare(id string) error {
	if c.replaced == nil {
		c.replaced = make(map[string]bool)
	}
	cid := c.naming.copyID(id)

	existing, ok := c.store.Node(cid)
	if !ok {
		if err := c.store.AddNode(model.NewNode(cid)); err != nil {
			return errors.Wrapf(err, "create copy of %s", id)
		}
		c.result.Stats.CopiesCreated++
		return nil
	}

	for _, e := range c.store.Outgoing(cid) {
		c.store.RemoveEdge(e)
	}
	for _, kind := range existing.AnnotationKinds() {
		if err := c.store.SetAnnotations(cid, kind, nil); err != nil {
			return errors.Wrapf(err, "reset copy %s", cid)
		}
	}
	c.replaced[id] = true
	c.result.Stats.CopiesReplaced++
	c.result.Signals = append(c.result.Signals, model.Signal{
		Type:        model.SignalReplacedCopy,
		Severity:    model.SeverityInfo,
		Description: "existing copy " + cid + " rebuilt",
		Data:        map[string]interface{}{"original": id, "copy": cid},
	})
	return nil
}

// fill writes annotations and edges of the copy of id
func (c *copier) fill(id string) error {
	cid := c.naming.copyID(id)
	orig, ok := c.store.Node(id)
	if !ok {
		return errors.Wrapf(ontology.ErrNodeNotFound, "original %s", id)
	}

	label := c.copyLabel(orig)
	if err := c.writeAnnotations(orig, cid, label); err != nil {
		return err
	}

	if err := c.add(model.Edge{Subject: cid, Predicate: vocabulary.SubClassOf, Object: id}); err != nil {
		return err
	}
	if err := c.add(model.Edge{Subject: cid, Predicate: c.spec.Property, Object: c.spec.Taxon}); err != nil {
		return err
	}
	for _, e := range c.store.Outgoing(id) {
		if err := c.carry(cid, e); err != nil {
			return err
		}
	}

	c.result.Copies = append(c.result.Copies, model.CopyResult{
		Original: id,
		Copy:     cid,
		Label:    label,
		Replaced: c.replaced[id],
	})
	c.logger.Debugw("Copy built",
		logger.FieldNode, id,
		"copy", cid,
		"label", label,
	)
	return nil
}

// copyLabel returns the suffixed primary label, or "" for unlabeled classes
func (c *copier) copyLabel(orig model.Node) string {
	labels := orig.Annotations[vocabulary.Label]
	if len(labels) == 0 || labels[0].Value == "" {
		return ""
	}
	return labels[0].Value + " " + c.spec.Suffix
}

func (c *copier) writeAnnotations(orig model.Node, cid, label string) error {
	var generic string
	if labels := orig.Annotations[vocabulary.Label]; len(labels) > 0 {
		generic = labels[0].Value
	}

	for _, kind := range orig.AnnotationKinds() {
		values := append([]model.Literal(nil), orig.Annotations[kind]...)
		for i := range values {
			switch {
			case kind == vocabulary.Label && i == 0 && label != "":
				values[i].Value = label
			case generic != "":
				values[i].Value = replaceWord(values[i].Value, generic, label)
			}
		}
		if err := c.store.SetAnnotations(cid, kind, values); err != nil {
			return errors.Wrapf(err, "annotate copy %s", cid)
		}
	}
	return nil
}

// replaceWord replaces occurrences of old in s that are not part of a longer
// word, so the label "ear" is left alone inside "hearing"
func replaceWord(s, old, repl string) string {
	if old == "" {
		return s
	}
	first, _ := utf8.DecodeRuneInString(old)
	last, _ := utf8.DecodeLastRuneInString(old)

	var b strings.Builder
	for {
		i := strings.Index(s, old)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		before, _ := utf8.DecodeLastRuneInString(s[:i])
		if i == 0 {
			before, _ = utf8.DecodeLastRuneInString(b.String())
		}
		after, _ := utf8.DecodeRuneInString(s[i+len(old):])

		b.WriteString(s[:i])
		if isWordRune(before) && isWordRune(first) || isWordRune(after) && isWordRune(last) {
			b.WriteString(old)
		} else {
			b.WriteString(repl)
		}
		s = s[i+len(old):]
	}
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// retarget maps region classes to their copies and placeholders to the taxon
func (c *copier) retarget(id string) string {
	switch {
	case c.region[id]:
		return c.naming.copyID(id)
	case c.seeds[id]:
		return c.spec.Taxon
	}
	return id
}

// carry copies one outgoing edge of an original onto its copy
func (c *copier) carry(cid string, e model.Edge) error {
	if e.Expression != nil {
		return c.carryExpression(cid, e)
	}

	obj := e.Object
	switch {
	case e.Predicate == c.spec.Property:
		if c.seeds[obj] {
			return nil // already stated by the copy's taxon edge
		}
		if c.region[obj] {
			obj = c.naming.copyID(obj)
		}
	case c.include[e.Predicate]:
		if c.region[obj] {
			obj = c.naming.copyID(obj)
		}
	case e.Predicate == vocabulary.SubClassOf:
		if !c.region[obj] {
			return nil // inherited through the original
		}
		obj = c.naming.copyID(obj)
	default:
		return nil
	}
	return c.add(model.Edge{Subject: cid, Predicate: e.Predicate, Object: obj})
}

func (c *copier) carryExpression(cid string, e model.Edge) error {
	if e.Predicate != vocabulary.SubClassOf && e.Predicate != vocabulary.EquivalentTo {
		return nil
	}
	x := *e.Expression

	if c.spec.TranslateIntersections {
		for _, conj := range conjuncts(x) {
			if err := c.addConjunct(cid, conj); err != nil {
				return err
			}
		}
		return nil
	}

	if !c.touchesRegion(x) {
		return nil // inherited through the original
	}
	// copies never carry equivalence axioms
	moved := x.Rename(c.retarget)
	return c.add(model.Edge{Subject: cid, Predicate: vocabulary.SubClassOf, Expression: &moved})
}

// addConjunct states one conjunct of a translated intersection on the copy:
// a named class becomes a subclass edge and an existential restriction on a
// named filler becomes an object property edge
func (c *copier) addConjunct(cid string, x model.Expression) error {
	switch x.Kind() {
	case model.ExprClass:
		if x.Class == "" {
			return nil
		}
		target := c.retarget(x.Class)
		if target == cid || vocabulary.IsBuiltin(target) {
			return nil
		}
		return c.add(model.Edge{Subject: cid, Predicate: vocabulary.SubClassOf, Object: target})
	case model.ExprSome:
		if x.Filler != nil && x.Filler.Kind() == model.ExprClass {
			return c.add(model.Edge{Subject: cid, Predicate: x.Property, Object: c.retarget(x.Filler.Class)})
		}
		moved := x.Rename(c.retarget)
		return c.add(model.Edge{Subject: cid, Predicate: vocabulary.SubClassOf, Expression: &moved})
	}
	return nil
}

func (c *copier) touchesRegion(x model.Expression) bool {
	for _, id := range x.Signature() {
		if c.region[id] || c.seeds[id] {
			return true
		}
	}
	return false
}

// add inserts an edge, dropping it with a warning when the store rejects
// it structurally
func (c *copier) add(e model.Edge) error {
	if _, err := c.store.AddEdge(e); err != nil {
		if !errors.IsStructuralError(err) {
			return errors.Wrapf(err, "add %s", e.Key())
		}
		c.logger.Warnw("Dropping edge rejected by store",
			logger.FieldEdge, e.Key(),
			logger.FieldError, err.Error(),
		)
		c.result.Stats.EdgesDropped++
		c.result.Signals = append(c.result.Signals, model.Signal{
			Type:        model.SignalDroppedEdge,
			Severity:    model.SeverityWarning,
			Description: "edge dropped while building copy: " + e.Key(),
			Data:        map[string]interface{}{"reason": err.Error()},
		})
	}
	return nil
}
