package style

// Resolved is the effective style of a text run. Bold and Italic are always
// concrete; Font, Size and Color stay unset when no level supplied them.
type Resolved struct {
	Font   Optional[string]
	Size   Optional[float64]
	Bold   bool
	Italic bool
	Color  Optional[string] // RGB hex
}

// Cascade holds the inherited style sources of one slide. Any of them may be
// nil.
type Cascade struct {
	Theme  *Theme
	Master *Table
	Layout *Table
}

// Merge folds the cascade for a run without resolving theme references:
// direct formatting, then the layout, then the master. Each step only fills
// fields still unset.
func (c Cascade) Merge(kind PlaceholderKind, level int, direct TextStyle) TextStyle {
	s := direct
	s = s.FillFrom(c.Layout.Lookup(kind, level))
	s = s.FillFrom(c.Master.Lookup(kind, level))
	return s
}

// Resolve computes the effective style of a run with direct formatting in a
// placeholder of the given kind at the given outline level. Precedence is
// direct run formatting, then layout, then master, then the theme font:
// major for titles, minor for everything else.
func (c Cascade) Resolve(kind PlaceholderKind, level int, direct TextStyle) Resolved {
	s := c.Merge(kind, level, direct)
	if !s.Font.IsSet() && c.Theme != nil {
		themeFont := c.Theme.Fonts.Minor
		if kind == KindTitle {
			themeFont = c.Theme.Fonts.Major
		}
		if themeFont != "" {
			s.Font = Some(themeFont)
		}
	}

	r := Resolved{
		Size:   s.Size,
		Bold:   s.Bold.Or(false),
		Italic: s.Italic.Or(false),
	}
	if name, ok := s.Font.Get(); ok {
		if font, ok := c.Theme.ResolveFont(name); ok {
			r.Font = Some(font)
		}
	}
	if ref, ok := s.Color.Get(); ok {
		if rgb, ok := c.Theme.ResolveColor(ref); ok {
			r.Color = Some(rgb)
		}
	}
	return r
}
