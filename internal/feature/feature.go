// Package feature provides coordinate-anchored annotations over a sequence.
package feature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Type is the category of a feature.
type Type string

// Feature categories.
const (
	TypeORF             Type = "orf"
	TypeGene            Type = "gene"
	TypeCDS             Type = "cds"
	TypePromoter        Type = "promoter"
	TypeTerminator      Type = "terminator"
	TypeRBS             Type = "rbs"
	TypeOrigin          Type = "origin"
	TypeRestrictionSite Type = "restriction_site"
	TypePrimerBind      Type = "primer_bind"
	TypeMiscFeature     Type = "misc_feature"
	TypeCustom          Type = "custom"
)

// Types lists every feature category.
var Types = []Type{
	TypeORF, TypeGene, TypeCDS, TypePromoter, TypeTerminator, TypeRBS,
	TypeOrigin, TypeRestrictionSite, TypePrimerBind, TypeMiscFeature, TypeCustom,
}

// Default colors per category, used when a feature is created without one.
var defaultColors = map[Type]string{
	TypeORF:             "#f59e0b",
	TypeGene:            "#3b82f6",
	TypeCDS:             "#8b5cf6",
	TypePromoter:        "#10b981",
	TypeTerminator:      "#ef4444",
	TypeRBS:             "#ec4899",
	TypeOrigin:          "#6b7280",
	TypeRestrictionSite: "#14b8a6",
	TypePrimerBind:      "#84cc16",
	TypeMiscFeature:     "#a3a3a3",
	TypeCustom:          "#0ea5e9",
}

// Reasons a feature cannot annotate a sequence.
var (
	ErrInvalidRange  = errors.New("invalid feature range")
	ErrInvalidStrand = errors.New("invalid feature strand")
	ErrUnknownType   = errors.New("unknown feature type")
)

// Known reports whether t is one of the feature categories.
func (t Type) Known() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType parses a feature category name.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TypeMiscFeature, nil
	}
	if !t.Known() {
		return "", fmt.Errorf("%w %q", ErrUnknownType, s)
	}
	return t, nil
}

// DefaultColor returns the default display color for a category.
func DefaultColor(t Type) string {
	if c, ok := defaultColors[t]; ok {
		return c
	}
	return defaultColors[TypeMiscFeature]
}

// Strand is the orientation of a feature.
type Strand int8

// Strands.
const (
	Forward Strand = 1
	Reverse Strand = -1
)

// Feature is a named, typed annotation over the half-open range [Start, End).
type Feature struct {
	ID       string
	Name     string
	Type     Type
	Start    int
	End      int
	Strand   Strand
	Color    string
	Metadata map[string]string
}

// New creates a feature with a fresh ID and the category's default color.
func New(name string, t Type, start, end int, strand Strand) Feature {
	if strand == 0 {
		strand = Forward
	}
	return Feature{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   t,
		Start:  start,
		End:    end,
		Strand: strand,
		Color:  DefaultColor(t),
	}
}

// Clone returns a copy of f that shares no mutable state with it.
func (f Feature) Clone() Feature {
	if f.Metadata != nil {
		md := make(map[string]string, len(f.Metadata))
		for k, v := range f.Metadata {
			md[k] = v
		}
		f.Metadata = md
	}
	return f
}

// CloneAll clones every feature.
func CloneAll(features []Feature) []Feature {
	if features == nil {
		return nil
	}
	out := make([]Feature, len(features))
	for i, f := range features {
		out[i] = f.Clone()
	}
	return out
}

// Len returns the number of residues covered.
func (f Feature) Len() int {
	return f.End - f.Start
}

// Valid reports whether 0 <= Start < End <= length.
func (f Feature) Valid(length int) bool {
	return f.Start >= 0 && f.Start < f.End && f.End <= length
}

// Check returns why f cannot annotate a sequence of the given length, or
// nil. The range is checked last so that callers dropping out-of-range
// features still see a bad strand or type.
func (f Feature) Check(length int) error {
	if f.Strand != Forward && f.Strand != Reverse {
		return fmt.Errorf("%w %d on %q", ErrInvalidStrand, f.Strand, f.Name)
	}
	if !f.Type.Known() {
		return fmt.Errorf("%w %q on %q", ErrUnknownType, f.Type, f.Name)
	}
	if !f.Valid(length) {
		return fmt.Errorf("%w [%d, %d) on %q for length %d", ErrInvalidRange, f.Start, f.End, f.Name, length)
	}
	return nil
}

// WithDefaults fills a zero strand, an empty type and an empty color.
func (f Feature) WithDefaults() Feature {
	if f.Strand == 0 {
		f.Strand = Forward
	}
	if f.Type == "" {
		f.Type = TypeMiscFeature
	}
	if f.Color == "" {
		f.Color = DefaultColor(f.Type)
	}
	return f
}

// Contains reports whether pos lies in [Start, End).
func (f Feature) Contains(pos int) bool {
	return pos >= f.Start && pos < f.End
}

// Filter returns clones of the features that pass Check for a sequence of
// the given length.
func Filter(features []Feature, length int) []Feature {
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		if f.Check(length) == nil {
			out = append(out, f.Clone())
		}
	}
	return out
}
