// Package script replays YAML edit scripts against an editor. A script
// names one block, its starting sequence and features, and a list of steps
// such as clicks, key presses, undo and checkpoints.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-seqedit/internal/fasta"
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// ErrInvalidScript is wrapped by every script validation error.
var ErrInvalidScript = errors.New("invalid script")

// Script is a decoded edit script.
type Script struct {
	Block     string        `yaml:"block"`
	Sequence  string        `yaml:"sequence"`
	FASTA     string        `yaml:"fasta"`
	Type      string        `yaml:"type"`
	Topology  string        `yaml:"topology"`
	Templates string        `yaml:"templates"`
	Features  []FeatureSpec `yaml:"features"`
	Steps     []Step        `yaml:"steps"`

	dir string // base for relative paths
}

// FeatureSpec describes a feature either directly or through a named
// template. Start and End are 0-based half-open.
type FeatureSpec struct {
	Template string            `yaml:"template"`
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type"`
	Start    int               `yaml:"start"`
	End      int               `yaml:"end"`
	Strand   int               `yaml:"strand"`
	Color    string            `yaml:"color"`
	Metadata map[string]string `yaml:"metadata"`
}

// Range is a half-open selection.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Step is one scripted action. Exactly one field must be set.
type Step struct {
	Click             *int         `yaml:"click"`
	Key               string       `yaml:"key"`
	Keys              []string     `yaml:"keys"`
	Paste             string       `yaml:"paste"`
	Delete            *Range       `yaml:"delete"`
	Undo              int          `yaml:"undo"`
	Redo              int          `yaml:"redo"`
	ToggleInsert      bool         `yaml:"toggle_insert"`
	Lock              *bool        `yaml:"lock"`
	Blur              bool         `yaml:"blur"`
	Checkpoint        *string      `yaml:"checkpoint"`
	Restore           string       `yaml:"restore"`
	DeleteCheckpoint  string       `yaml:"delete_checkpoint"`
	ReverseComplement bool         `yaml:"reverse_complement"`
	Rotate            *int         `yaml:"rotate"`
	AddFeature        *FeatureSpec `yaml:"add_feature"`
	UpdateFeature     *FeatureSpec `yaml:"update_feature"`
	RemoveFeature     string       `yaml:"remove_feature"`
}

// Op names the action of a step, or returns an error if the step sets no
// action or more than one.
func (s Step) Op() (string, error) {
	var ops []string
	add := func(set bool, name string) {
		if set {
			ops = append(ops, name)
		}
	}
	add(s.Click != nil, "click")
	add(s.Key != "", "key")
	add(len(s.Keys) > 0, "keys")
	add(s.Paste != "", "paste")
	add(s.Delete != nil, "delete")
	add(s.Undo > 0, "undo")
	add(s.Redo > 0, "redo")
	add(s.ToggleInsert, "toggle_insert")
	add(s.Lock != nil, "lock")
	add(s.Blur, "blur")
	add(s.Checkpoint != nil, "checkpoint")
	add(s.Restore != "", "restore")
	add(s.DeleteCheckpoint != "", "delete_checkpoint")
	add(s.ReverseComplement, "reverse_complement")
	add(s.Rotate != nil, "rotate")
	add(s.AddFeature != nil, "add_feature")
	add(s.UpdateFeature != nil, "update_feature")
	add(s.RemoveFeature != "", "remove_feature")

	switch len(ops) {
	case 0:
		return "", fmt.Errorf("%w: step has no action", ErrInvalidScript)
	case 1:
		return ops[0], nil
	default:
		return "", fmt.Errorf("%w: step has several actions %v", ErrInvalidScript, ops)
	}
}

// Read decodes and validates a script. Relative paths resolve against the
// working directory.
func Read(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a script file. Relative paths inside it resolve against the
// file's directory.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Validate checks the script header and that every step has one action.
func (s *Script) Validate() error {
	if s.Block == "" {
		return fmt.Errorf("%w: missing block", ErrInvalidScript)
	}
	if s.Sequence != "" && s.FASTA != "" {
		return fmt.Errorf("%w: sequence and fasta are mutually exclusive", ErrInvalidScript)
	}
	if _, ok := sequence.ParseType(s.Type); !ok {
		return fmt.Errorf("%w: unknown sequence type %q", ErrInvalidScript, s.Type)
	}
	if _, ok := sequence.ParseTopology(s.Topology); !ok {
		return fmt.Errorf("%w: unknown topology %q", ErrInvalidScript, s.Topology)
	}
	for i, st := range s.Steps {
		if _, err := st.Op(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Buffer builds the starting buffer from the inline sequence or the first
// FASTA record.
func (s *Script) Buffer() (sequence.Buffer, error) {
	raw := s.Sequence
	if s.FASTA != "" {
		rec, err := fasta.First(s.path(s.FASTA))
		if err != nil {
			return sequence.Buffer{}, err
		}
		raw = rec.Seq
	}

	typ, _ := sequence.ParseType(s.Type)
	topo, _ := sequence.ParseTopology(s.Topology)
	buf, err := sequence.New(s.Block, raw, typ, topo)
	if err != nil {
		return sequence.Buffer{}, fmt.Errorf("block %s: %w", s.Block, err)
	}
	return buf, nil
}

// Library loads the script's feature templates, if any.
func (s *Script) Library() (feature.Library, error) {
	if s.Templates == "" {
		return feature.Library{}, nil
	}
	return feature.LoadTemplates(s.path(s.Templates))
}

func (s *Script) path(p string) string {
	if filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

// Feature builds a feature from fs, starting from the named template
// when one is given. Fields set on fs override the template.
func (fs FeatureSpec) Feature(lib feature.Library) (feature.Feature, error) {
	t := feature.Template{}
	if fs.Template != "" {
		var ok bool
		if t, ok = lib[fs.Template]; !ok {
			return feature.Feature{}, fmt.Errorf("%w: unknown template %q", ErrInvalidScript, fs.Template)
		}
	}
	if fs.Name != "" {
		t.Name = fs.Name
	}
	if fs.Type != "" {
		t.Type = fs.Type
	}
	if fs.Strand != 0 {
		t.Strand = fs.Strand
	}
	if fs.Color != "" {
		t.Color = fs.Color
	}
	if len(fs.Metadata) > 0 {
		t.Metadata = fs.Metadata
	}
	return t.Instantiate(fs.Start, fs.End)
}
