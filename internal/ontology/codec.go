package ontology

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/model"
	"gopkg.in/yaml.v3"
)

// Format is a document serialisation format
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.NewConfigurationError("format", name, "expected yaml, json or toml")
}

// DetectFormat picks a format from the file extension
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.WithHint(
			errors.NewConfigurationError("format", path, "cannot infer format without a file extension"),
			"pass --format yaml|json|toml")
	}
	return ParseFormat(ext)
}

// Load reads an ontology document from disk. An empty format is inferred
// from the file extension.
func Load(path string, format Format) (*Graph, error) {
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	g, err := Decode(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return g, nil
}

// Save writes the ontology to disk, inferring the format like Load
func Save(s Store, path string, format Format) (err error) {
	if format == "" {
		f, derr := DetectFormat(path)
		if derr != nil {
			return derr
		}
		format = f
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "close %s", path)
		}
	}()

	return Encode(f, s, format)
}

// Decode parses a document and builds a Graph from it
func Decode(r io.Reader, format Format) (*Graph, error) {
	var doc model.Document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "decode yaml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode toml")
		}
	default:
		return nil, errors.NewConfigurationError("format", string(format), "unsupported format")
	}
	return FromDocument(doc)
}

// Encode serialises the ontology
func Encode(w io.Writer, s Store, format Format) error {
	doc := ToDocument(s)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "encode json")
	case FormatTOML:
		return errors.Wrap(toml.NewEncoder(w).Encode(doc), "encode toml")
	}
	return errors.NewConfigurationError("format", string(format), "unsupported format")
}

// FromDocument builds a Graph. Classes referenced by axioms but not listed
// are declared implicitly; repeated class entries are combined.
func FromDocument(doc model.Document) (*Graph, error) {
	g := NewGraph()
	g.Ontology = doc.Ontology
	for k, v := range doc.Prefixes {
		g.Prefixes[k] = v
	}
	for _, p := range doc.Properties {
		g.AddProperty(p)
	}

	for _, c := range doc.Classes {
		if c.ID == "" {
			return nil, errors.Wrap(ErrEmptyID, "class entry")
		}
		if !g.HasNode(c.ID) {
			if err := g.AddNode(model.NewNode(c.ID)); err != nil {
				return nil, err
			}
		}
		for _, kind := range sortedKinds(c.Annotations) {
			values := append(g.Annotations(c.ID, kind), c.Annotations[kind]...)
			if err := g.SetAnnotations(c.ID, kind, values); err != nil {
				return nil, err
			}
		}
	}

	for _, c := range doc.Classes {
		for _, ax := range c.Axioms {
			edge := model.Edge{Subject: c.ID, Predicate: ax.Predicate, Object: ax.Object, Expression: ax.Expression}
			for _, t := range edge.Targets() {
				if !g.HasNode(t) {
					if err := g.AddNode(model.NewNode(t)); err != nil {
						return nil, err
					}
				}
			}
			if _, err := g.AddEdge(edge); err != nil {
				if errors.IsStructuralError(err) {
					// tautological self-loop, nothing to keep
					continue
				}
				return nil, errors.Wrapf(err, "class %s", c.ID)
			}
		}
	}
	return g, nil
}

// ToDocument converts a store into its serialised form, in a stable order
func ToDocument(s Store) model.Document {
	doc := model.Document{
		Properties: s.Properties(),
		Classes:    make([]model.ClassEntry, 0, s.NodeCount()),
	}
	if g, ok := s.(*Graph); ok {
		doc.Ontology = g.Ontology
		if len(g.Prefixes) > 0 {
			doc.Prefixes = make(map[string]string, len(g.Prefixes))
			for k, v := range g.Prefixes {
				doc.Prefixes[k] = v
			}
		}
	}

	for _, id := range s.Nodes() {
		n, _ := s.Node(id)
		entry := model.ClassEntry{ID: id}
		if kinds := n.AnnotationKinds(); len(kinds) > 0 {
			entry.Annotations = make(map[string][]model.Literal, len(kinds))
			for _, k := range kinds {
				entry.Annotations[k] = n.Annotations[k]
			}
		}
		for _, e := range s.Outgoing(id) {
			entry.Axioms = append(entry.Axioms, model.Axiom{
				Predicate:  e.Predicate,
				Object:     e.Object,
				Expression: e.Expression,
			})
		}
		doc.Classes = append(doc.Classes, entry)
	}
	return doc
}

// Fingerprint hashes the canonical document form of the store. Two stores
// with the same classes, annotations and edges share a fingerprint.
func Fingerprint(s Store) string {
	var buf bytes.Buffer
	doc := ToDocument(s)
	doc.Ontology = ""
	doc.Prefixes = nil
	_ = json.NewEncoder(&buf).Encode(doc)
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func sortedKinds(m map[string][]model.Literal) []string {
	n := model.Node{Annotations: m}
	return n.AnnotationKinds()
}
