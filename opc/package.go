// Package opc provides access to Open Packaging Conventions containers:
// the ZIP-based part store used by PPTX and XLSX files, part relationships,
// and a generic XML node tree for parts whose schema is open-ended.
package opc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrPartNotFound is returned when a requested part does not exist.
var ErrPartNotFound = errors.New("part not found")

// Package is a read-only store of named parts. Part names are slash-separated
// and rooted at the package root without a leading slash, for example
// "ppt/slides/slide3.xml".
type Package interface {
	// Parts lists every part name in the package.
	Parts() []string
	// ReadPart returns the content of the named part, or false if absent.
	ReadPart(name string) ([]byte, bool)
}

// ZipPackage is a Package backed by a ZIP archive. It is safe for
// concurrent reads.
type ZipPackage struct {
	closer io.Closer
	index  map[string]*zip.File
	names  []string
}

// OpenFile opens a package file from disk. The returned package must be
// closed when done.
func OpenFile(filename string) (*ZipPackage, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	p := newZipPackage(&zr.Reader)
	p.closer = zr
	return p, nil
}

// OpenReader opens a package from a random-access reader.
func OpenReader(r io.ReaderAt, size int64) (*ZipPackage, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newZipPackage(zr), nil
}

// OpenBytes opens a package held entirely in memory.
func OpenBytes(data []byte) (*ZipPackage, error) {
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

func newZipPackage(zr *zip.Reader) *ZipPackage {
	p := &ZipPackage{
		index: make(map[string]*zip.File, len(zr.File)),
		names: make([]string, 0, len(zr.File)),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.TrimPrefix(strings.ReplaceAll(f.Name, "\\", "/"), "/")
		if _, dup := p.index[name]; dup {
			continue
		}
		p.index[name] = f
		p.names = append(p.names, name)
	}
	return p
}

// Parts returns the part names in archive order.
func (p *ZipPackage) Parts() []string {
	return append([]string(nil), p.names...)
}

// ReadPart reads a part's content. Unreadable entries are reported as absent.
func (p *ZipPackage) ReadPart(name string) ([]byte, bool) {
	f, ok := p.index[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, false
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}
	return data, true
}

// HasPart reports whether the named part exists without reading it.
func (p *ZipPackage) HasPart(name string) bool {
	_, ok := p.index[strings.TrimPrefix(name, "/")]
	return ok
}

// Close releases the underlying file, if the package owns one.
// It is safe to call Close multiple times.
func (p *ZipPackage) Close() error {
	if p.closer != nil {
		err := p.closer.Close()
		p.closer = nil
		return err
	}
	return nil
}

// MapPackage is an in-memory Package keyed by part name.
type MapPackage map[string][]byte

// Parts returns the part names in lexical order.
func (m MapPackage) Parts() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadPart returns the named part.
func (m MapPackage) ReadPart(name string) ([]byte, bool) {
	data, ok := m[strings.TrimPrefix(name, "/")]
	return data, ok
}

// HasPart reports whether the named part exists.
func (m MapPackage) HasPart(name string) bool {
	_, ok := m[strings.TrimPrefix(name, "/")]
	return ok
}

// HasPart reports whether pkg contains the named part, avoiding a full read
// when the package can answer directly.
func HasPart(pkg Package, name string) bool {
	if h, ok := pkg.(interface{ HasPart(string) bool }); ok {
		return h.HasPart(name)
	}
	_, ok := pkg.ReadPart(name)
	return ok
}

// PartsWithPrefix returns the names of all parts under prefix, sorted.
func PartsWithPrefix(pkg Package, prefix string) []string {
	var names []string
	for _, name := range pkg.Parts() {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ReadXML reads a part and decodes it into v.
func ReadXML(pkg Package, name string, v any) error {
	data, ok := pkg.ReadPart(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	if err := Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}
