package pptx

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/deckparse/animation"
	"github.com/tsawler/deckparse/internal/memo"
	"github.com/tsawler/deckparse/media"
	"github.com/tsawler/deckparse/opc"
	"github.com/tsawler/deckparse/style"
)

const defaultPresentationPart = "ppt/presentation.xml"

var (
	// ErrNotPresentation is returned when the package has no presentation part.
	ErrNotPresentation = errors.New("not a presentation package")
	// ErrNoSlides is returned when the presentation has no slide list.
	ErrNoSlides = errors.New("presentation has no slides")
)

// Options configures Extract.
type Options struct {
	// Workers bounds the number of slides extracted concurrently. Zero or
	// less means GOMAXPROCS.
	Workers int
	// ProbeMedia reads every media part to record its format and size.
	ProbeMedia bool
	// OCR, when set with ProbeMedia, recognizes text in media images.
	OCR media.Recognizer
}

// Extract reads the presentation in pkg. Slides that cannot be processed
// are left out of the document and reported as skips; the returned error is
// reserved for document-level failures and cancellation.
func Extract(ctx context.Context, pkg opc.Package, opts Options) (*Document, []Skip, error) {
	a := newAssembler(pkg)
	if err := a.loadPresentation(); err != nil {
		return nil, nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type result struct {
		slide *Slide
		skip  *Skip
	}
	results := make([]result, len(a.slideRefs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ref := range a.slideRefs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slide, skip := a.slide(i+1, ref)
			results[i] = result{slide: slide, skip: skip}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	doc := &Document{
		Theme:          a.documentTheme(),
		MediaFileNames: media.Inventory(pkg),
		Slides:         []Slide{},
	}
	var skips []Skip
	for _, r := range results {
		switch {
		case r.slide != nil:
			doc.Slides = append(doc.Slides, *r.slide)
		case r.skip != nil:
			skips = append(skips, *r.skip)
		}
	}
	doc.SlideCount = len(doc.Slides)

	if opts.ProbeMedia {
		doc.Media = media.ProbeAll(ctx, pkg, doc.MediaFileNames, opts.OCR)
	}
	return doc, skips, nil
}

// slideRef is one entry of the presentation's slide list. Part is empty when
// the relationship does not resolve.
type slideRef struct {
	id   string
	part string
}

// template is a parsed layout or master.
type template struct {
	name   string
	styles *style.Table
}

// assembler holds the per-document state shared by slide workers. Every
// cache is compute-once, so workers only ever read shared values.
type assembler struct {
	rels        *opc.Resolver
	presPart    string
	firstMaster string
	presTheme   string
	slideRefs   []slideRef
	templates   memo.Cache[*template]
	themes      memo.Cache[*style.Theme]
}

func newAssembler(pkg opc.Package) *assembler {
	return &assembler{rels: opc.NewResolver(pkg)}
}

func (a *assembler) loadPresentation() error {
	pkg := a.rels.Package()
	a.presPart = defaultPresentationPart
	if rel, ok := a.rels.ByType("", opc.RelOfficeDocument); ok && !rel.External && opc.HasPart(pkg, rel.Target) {
		a.presPart = rel.Target
	}
	if !opc.HasPart(pkg, a.presPart) {
		return ErrNotPresentation
	}

	var pres presentationXML
	if err := opc.ReadXML(pkg, a.presPart, &pres); err != nil {
		return fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}
	if pres.SldIDLst == nil || len(pres.SldIDLst.IDs) == 0 {
		return ErrNoSlides
	}
	for _, m := range pres.SldMasterIDs.IDs {
		if part, ok := a.rels.PartTarget(a.presPart, m.RID); ok {
			a.firstMaster = part
			break
		}
	}
	a.presTheme, _ = a.internalTarget(a.presPart, opc.RelTheme)

	a.slideRefs = make([]slideRef, 0, len(pres.SldIDLst.IDs))
	for _, id := range pres.SldIDLst.IDs {
		part, _ := a.rels.PartTarget(a.presPart, id.RID)
		a.slideRefs = append(a.slideRefs, slideRef{id: id.RID, part: part})
	}
	return nil
}

// internalTarget returns the first relationship of source with the given
// type that points at an existing part.
func (a *assembler) internalTarget(source, suffix string) (string, bool) {
	for _, rel := range a.rels.Table(source).AllByType(suffix) {
		if !rel.External && opc.HasPart(a.rels.Package(), rel.Target) {
			return rel.Target, true
		}
	}
	return "", false
}

// template loads a layout or master once. A missing or malformed part is
// cached as nil and treated as absent.
func (a *assembler) template(part string) *template {
	if part == "" {
		return nil
	}
	return a.templates.Get(part, func() *template {
		data, ok := a.rels.Package().ReadPart(part)
		if !ok {
			return nil
		}
		styles, err := style.ParseStyleTable(data)
		if err != nil {
			return nil
		}
		t := &template{styles: styles}
		var sld slideXML
		if opc.Unmarshal(data, &sld) == nil && sld.CSld != nil {
			t.name = sld.CSld.Name
		}
		return t
	})
}

// theme loads a theme part once. Missing or malformed themes yield the
// empty theme.
func (a *assembler) theme(part string) *style.Theme {
	if part == "" {
		return style.EmptyTheme()
	}
	return a.themes.Get(part, func() *style.Theme {
		data, ok := a.rels.Package().ReadPart(part)
		if !ok {
			return style.EmptyTheme()
		}
		th, err := style.ParseTheme(data)
		if err != nil {
			return style.EmptyTheme()
		}
		return th
	})
}

// themeFor returns the theme of a master, falling back to the
// presentation's theme.
func (a *assembler) themeFor(master string) *style.Theme {
	if master != "" {
		if part, ok := a.internalTarget(master, opc.RelTheme); ok {
			return a.theme(part)
		}
	}
	return a.theme(a.presTheme)
}

func (a *assembler) documentTheme() *style.Theme {
	return a.themeFor(a.firstMaster)
}

// slide extracts one slide or explains why it was skipped.
func (a *assembler) slide(number int, ref slideRef) (*Slide, *Skip) {
	skip := func(format string, args ...any) (*Slide, *Skip) {
		return nil, &Skip{Number: number, Part: ref.part, Reason: fmt.Sprintf(format, args...)}
	}
	if ref.part == "" {
		return skip("relationship %s does not resolve to a slide part", ref.id)
	}

	layoutPart, _ := a.internalTarget(ref.part, opc.RelSlideLayout)
	layout := a.template(layoutPart)
	masterPart := ""
	if layout != nil {
		masterPart, _ = a.internalTarget(layoutPart, opc.RelSlideMaster)
	}
	if masterPart == "" {
		masterPart = a.firstMaster
	}
	master := a.template(masterPart)
	if layout == nil && master == nil {
		return skip("no resolvable layout or master")
	}

	sld, err := readSlide(a.rels.Package(), ref.part)
	if errors.Is(err, errNoShapeTree) {
		return skip("%v", errNoShapeTree)
	}
	if err != nil {
		return skip("malformed slide: %v", err)
	}

	cascade := style.Cascade{Theme: a.themeFor(masterPart)}
	s := &Slide{Number: number, Part: ref.part}
	if layout != nil {
		cascade.Layout = layout.styles
		s.LayoutName = layout.name
	}
	if master != nil {
		cascade.Master = master.styles
	}

	s.Shapes = newShapeExtractor(a.rels, ref.part, cascade).tree(sld.CSld.SpTree)
	s.Display = display(sld.CSld.SpTree)
	s.Transition = readTransition(sld)
	if root, ok := animation.ParseTiming(sld.Timing); ok {
		s.Animation = root
	}
	s.Notes = a.notes(ref.part)
	return s, nil
}

// display records the footer placeholders present anywhere in the tree,
// including those without a transform of their own.
func display(t *spTreeXML) Display {
	var d Display
	var walk func(*spTreeXML)
	walk = func(t *spTreeXML) {
		for i := range t.Sp {
			ph := t.Sp[i].NvSpPr.NvPr.Ph
			if ph == nil {
				continue
			}
			switch ph.Type {
			case "ftr":
				d.ShowsFooter = true
			case "dt":
				d.ShowsDate = true
			case "sldNum":
				d.ShowsSlideNumber = true
			}
		}
		for i := range t.GrpSp {
			walk(&t.GrpSp[i])
		}
	}
	walk(t)
	return d
}

// notes returns the speaker notes of a slide: the text of every notes shape
// except the slide image and slide number placeholders.
func (a *assembler) notes(slidePart string) string {
	part, ok := a.internalTarget(slidePart, opc.RelNotesSlide)
	if !ok {
		return ""
	}
	var sld slideXML
	if err := opc.ReadXML(a.rels.Package(), part, &sld); err != nil || sld.CSld == nil || sld.CSld.SpTree == nil {
		return ""
	}
	var lines []string
	var walk func(*spTreeXML)
	walk = func(t *spTreeXML) {
		for i := range t.Sp {
			sp := &t.Sp[i]
			if ph := sp.NvSpPr.NvPr.Ph; ph != nil && (ph.Type == "sldImg" || ph.Type == "sldNum") {
				continue
			}
			if sp.TxBody == nil {
				continue
			}
			for _, p := range sp.TxBody.P {
				var b strings.Builder
				for _, r := range p.Runs {
					b.WriteString(r.T)
				}
				if line := strings.TrimSpace(b.String()); line != "" {
					lines = append(lines, line)
				}
			}
		}
		for i := range t.GrpSp {
			walk(&t.GrpSp[i])
		}
	}
	walk(sld.CSld.SpTree)
	return norm.NFC.String(strings.Join(lines, "\n"))
}
