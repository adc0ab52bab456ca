package style

import "github.com/tsawler/deckparse/opc"

// PlaceholderKind is the role of a text frame used as the style table key.
type PlaceholderKind int

const (
	KindOther PlaceholderKind = iota
	KindTitle
	KindBody
)

// MaxLevel is the deepest outline level, zero-based.
const MaxLevel = 8

func (k PlaceholderKind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindBody:
		return "body"
	default:
		return "other"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k PlaceholderKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf maps a placeholder's ph@type to its style kind. A placeholder with
// no type is a body placeholder.
func KindOf(phType string) PlaceholderKind {
	switch phType {
	case "title", "ctrTitle":
		return KindTitle
	case "", "body", "subTitle", "obj":
		return KindBody
	default:
		return KindOther
	}
}

// Entry is the style of one placeholder kind: a default plus nine
// outline-level overrides. Levels are only consulted for body.
type Entry struct {
	Kind    PlaceholderKind
	Default TextStyle
	Levels  [MaxLevel + 1]TextStyle
}

// fill merges other into e without overwriting fields e already has.
func (e *Entry) fill(other Entry) {
	e.Default = e.Default.FillFrom(other.Default)
	for i := range e.Levels {
		e.Levels[i] = e.Levels[i].FillFrom(other.Levels[i])
	}
}

// Table holds the placeholder style entries of one master or layout part.
// It is immutable after construction.
type Table struct {
	entries map[PlaceholderKind]*Entry
}

// NewTable builds a table from entries. Later entries for the same kind only
// fill fields the earlier ones left unset.
func NewTable(entries ...Entry) *Table {
	t := &Table{entries: make(map[PlaceholderKind]*Entry, len(entries))}
	for _, e := range entries {
		t.add(e)
	}
	return t
}

func (t *Table) add(e Entry) {
	if cur, ok := t.entries[e.Kind]; ok {
		cur.fill(e)
		return
	}
	cp := e
	t.entries[e.Kind] = &cp
}

// Entry returns the entry for kind.
func (t *Table) Entry(kind PlaceholderKind) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[kind]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Lookup returns the style for kind at the given outline level: the level
// override filled from the kind default. Levels are ignored for kinds other
// than body. An unset level falls through to the default only, never to
// another level.
func (t *Table) Lookup(kind PlaceholderKind, level int) TextStyle {
	e, ok := t.Entry(kind)
	if !ok {
		return TextStyle{}
	}
	if kind != KindBody {
		return e.Default
	}
	return e.Levels[ClampLevel(level)].FillFrom(e.Default)
}

// Len returns the number of kinds with an entry.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ClampLevel restricts an outline level to [0, MaxLevel].
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// ParseStyleTable builds the style table of a slide master or slide layout
// part. Master text styles (p:txStyles) are read first; the list styles of
// placeholder shapes then fill whatever their kind's entry still lacks.
func ParseStyleTable(data []byte) (*Table, error) {
	var x templateXML
	if err := opc.Unmarshal(data, &x); err != nil {
		return nil, err
	}

	t := NewTable()
	if ts := x.TxStyles; ts != nil {
		if ts.Title != nil {
			t.add(ts.Title.entry(KindTitle))
		}
		if ts.Body != nil {
			t.add(ts.Body.entry(KindBody))
		}
		if ts.Other != nil {
			t.add(ts.Other.entry(KindOther))
		}
	}
	addPlaceholderStyles(t, x.CSld.SpTree.Shapes, x.CSld.SpTree.Groups)
	return t, nil
}

func addPlaceholderStyles(t *Table, shapes []templateShapeXML, groups []templateGroupXML) {
	for _, sp := range shapes {
		ph := sp.NvSpPr.NvPr.Ph
		if ph == nil || sp.TxBody == nil || sp.TxBody.LstStyle == nil {
			continue
		}
		t.add(sp.TxBody.LstStyle.entry(KindOf(ph.Type)))
	}
	for _, g := range groups {
		addPlaceholderStyles(t, g.Shapes, g.Groups)
	}
}
