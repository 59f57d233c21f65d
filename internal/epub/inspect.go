package epub

import (
	"fmt"
	"path"
	"strings"
)

// Info summarises a packaged EPUB.
type Info struct {
	OPF      *OPF
	NCX      *NCX
	Entries  []string
	Chapters []Chapter
}

// Title returns the dc:title of the book.
func (i *Info) Title() string {
	return i.OPF.Metadata.Title
}

// Inspect reopens EPUB bytes, checks the container invariants (mimetype first
// and stored, every spine idref in the manifest, consecutive playOrder) and
// recovers per-chapter article metadata.
func Inspect(data []byte) (*Info, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}

	opfData, err := r.ReadFile(r.OPFPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read OPF: %w", err)
	}
	opfDir := path.Dir(r.OPFPath())
	opf, err := ParseOPF(opfData, opfDir)
	if err != nil {
		return nil, err
	}

	info := &Info{
		OPF:     opf,
		Entries: r.Names(),
	}

	if opf.NCXPath != "" {
		ncxData, err := r.ReadFile(opf.NCXPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read NCX: %w", err)
		}
		ncx, err := ParseNCX(ncxData, path.Dir(opf.NCXPath))
		if err != nil {
			return nil, err
		}
		if err := ncx.CheckPlayOrder(); err != nil {
			return nil, err
		}
		info.NCX = ncx
	}

	hrefs, err := opf.SpineHrefs()
	if err != nil {
		return nil, err
	}
	for _, href := range hrefs {
		if !strings.HasPrefix(path.Base(href), "chapter") {
			continue
		}
		data, err := r.ReadFile(href)
		if err != nil {
			return nil, fmt.Errorf("failed to read chapter: %w", err)
		}
		ch, err := LoadChapter(href, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", href, err)
		}
		info.Chapters = append(info.Chapters, *ch)
	}

	return info, nil
}
