package opc

import (
	"encoding/xml"
	"path"
	"strings"

	"github.com/tsawler/deckparse/internal/memo"
)

// Relationship type suffixes. Types are matched by suffix so that vendor and
// strict-schema URI prefixes are tolerated.
const (
	RelOfficeDocument = "/officeDocument"
	RelSlide          = "/slide"
	RelSlideLayout    = "/slideLayout"
	RelSlideMaster    = "/slideMaster"
	RelTheme          = "/theme"
	RelNotesSlide     = "/notesSlide"
	RelChart          = "/chart"
	RelImage          = "/image"
	RelHyperlink      = "/hyperlink"
	RelPackage        = "/package"
	RelOLEObject      = "/oleObject"
	RelDiagramData    = "/diagramData"
)

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// Relationship is a typed pointer from a source part to another part or to
// an external URI.
type Relationship struct {
	ID   string
	Type string
	// Target is the resolved part name for internal relationships and the
	// verbatim target URI for external ones.
	Target   string
	External bool
}

// HasType reports whether the relationship type ends with suffix.
func (r Relationship) HasType(suffix string) bool {
	return strings.HasSuffix(r.Type, suffix)
}

// Relationships is the relationship table of one source part.
type Relationships struct {
	Source string
	list   []Relationship
	byID   map[string]Relationship
}

// Get returns the relationship with the given id.
func (t *Relationships) Get(id string) (Relationship, bool) {
	if t == nil || id == "" {
		return Relationship{}, false
	}
	rel, ok := t.byID[id]
	return rel, ok
}

// ByType returns the first relationship whose type ends with suffix.
func (t *Relationships) ByType(suffix string) (Relationship, bool) {
	if t == nil {
		return Relationship{}, false
	}
	for _, rel := range t.list {
		if rel.HasType(suffix) {
			return rel, true
		}
	}
	return Relationship{}, false
}

// AllByType returns every relationship whose type ends with suffix, in
// declaration order.
func (t *Relationships) AllByType(suffix string) []Relationship {
	if t == nil {
		return nil
	}
	var out []Relationship
	for _, rel := range t.list {
		if rel.HasType(suffix) {
			out = append(out, rel)
		}
	}
	return out
}

// Len returns the number of relationships.
func (t *Relationships) Len() int {
	if t == nil {
		return 0
	}
	return len(t.list)
}

// RelsPath returns the companion relationship part for a source part:
// "<dir>/_rels/<base>.rels". The package root uses "_rels/.rels".
func RelsPath(source string) string {
	if source == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
}

// ResolveTarget resolves a relationship target against the directory of its
// source part. Targets starting with "/" are package-absolute.
func ResolveTarget(source, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(source), target), "/")
}

// ParseRelationships decodes a .rels part for the given source part.
func ParseRelationships(source string, data []byte) (*Relationships, error) {
	var x relationshipsXML
	if err := Unmarshal(data, &x); err != nil {
		return nil, err
	}
	t := &Relationships{
		Source: source,
		list:   make([]Relationship, 0, len(x.Relationship)),
		byID:   make(map[string]Relationship, len(x.Relationship)),
	}
	for _, r := range x.Relationship {
		rel := Relationship{
			ID:       r.ID,
			Type:     r.Type,
			External: strings.EqualFold(r.TargetMode, "External"),
		}
		if rel.External {
			rel.Target = r.Target
		} else {
			rel.Target = ResolveTarget(source, r.Target)
		}
		if _, dup := t.byID[rel.ID]; dup {
			continue
		}
		t.list = append(t.list, rel)
		t.byID[rel.ID] = rel
	}
	return t, nil
}

// Resolver answers relationship lookups for the parts of one package.
// Tables are loaded lazily on first use and memoized for the lifetime of the
// Resolver; it is safe for concurrent use.
type Resolver struct {
	pkg    Package
	tables memo.Cache[*Relationships]
}

// NewResolver creates a Resolver over pkg.
func NewResolver(pkg Package) *Resolver {
	return &Resolver{pkg: pkg}
}

// Package returns the underlying part store.
func (r *Resolver) Package() Package {
	return r.pkg
}

// Table returns the relationship table of source. A missing or malformed
// .rels part yields an empty table, never an error.
func (r *Resolver) Table(source string) *Relationships {
	return r.tables.Get(source, func() *Relationships {
		empty := &Relationships{Source: source, byID: map[string]Relationship{}}
		data, ok := r.pkg.ReadPart(RelsPath(source))
		if !ok {
			return empty
		}
		t, err := ParseRelationships(source, data)
		if err != nil {
			return empty
		}
		return t
	})
}

// Resolve looks up a relationship of source by id.
func (r *Resolver) Resolve(source, id string) (Relationship, bool) {
	return r.Table(source).Get(id)
}

// ByType returns the first relationship of source whose type ends with suffix.
func (r *Resolver) ByType(source, suffix string) (Relationship, bool) {
	return r.Table(source).ByType(suffix)
}

// PartTarget resolves id to an internal part name that exists in the
// package. External relationships and dangling targets report false.
func (r *Resolver) PartTarget(source, id string) (string, bool) {
	rel, ok := r.Resolve(source, id)
	if !ok || rel.External {
		return "", false
	}
	if !HasPart(r.pkg, rel.Target) {
		return "", false
	}
	return rel.Target, true
}

// ExternalTarget resolves id to an external target URI.
func (r *Resolver) ExternalTarget(source, id string) (string, bool) {
	rel, ok := r.Resolve(source, id)
	if !ok || !rel.External || rel.Target == "" {
		return "", false
	}
	return rel.Target, true
}
