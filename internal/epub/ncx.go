package epub

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

type ncxDocument struct {
	XMLName xml.Name `xml:"ncx"`
	Head    struct {
		Meta []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"head"`
	DocTitle  ncxText       `xml:"docTitle"`
	DocAuthor ncxText       `xml:"docAuthor"`
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxText struct {
	Text string `xml:"text"`
}

type ncxNavPoint struct {
	ID        string  `xml:"id,attr"`
	PlayOrder string  `xml:"playOrder,attr"`
	Label     ncxText `xml:"navLabel"`
	Content   struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
}

// ParseNCX parses a toc.ncx document. ncxDir is the directory containing the
// NCX file; content sources are resolved against it.
func ParseNCX(content []byte, ncxDir string) (*NCX, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX XML: %w", err)
	}

	ncx := &NCX{
		DocTitle:  strings.TrimSpace(doc.DocTitle.Text),
		DocAuthor: strings.TrimSpace(doc.DocAuthor.Text),
	}
	for _, m := range doc.Head.Meta {
		switch m.Name {
		case "dtb:uid":
			ncx.UID = m.Content
		case "dtb:depth":
			ncx.Depth, _ = strconv.Atoi(m.Content)
		case "dtb:totalPageCount":
			ncx.TotalPageCount, _ = strconv.Atoi(m.Content)
		}
	}

	for _, np := range doc.NavPoints {
		order, err := strconv.Atoi(np.PlayOrder)
		if err != nil {
			return nil, fmt.Errorf("navPoint %q: invalid playOrder %q", np.ID, np.PlayOrder)
		}
		contentPath, fragment := splitFragment(np.Content.Src)
		ncx.NavPoints = append(ncx.NavPoints, NavPoint{
			ID:          np.ID,
			PlayOrder:   order,
			Label:       strings.TrimSpace(np.Label.Text),
			ContentPath: joinPath(ncxDir, contentPath),
			Fragment:    fragment,
		})
	}
	return ncx, nil
}

// CheckPlayOrder verifies playOrder values start at 1 and are consecutive.
func (n *NCX) CheckPlayOrder() error {
	for i, np := range n.NavPoints {
		if np.PlayOrder != i+1 {
			return fmt.Errorf("navPoint %q has playOrder %d, want %d", np.ID, np.PlayOrder, i+1)
		}
	}
	return nil
}

// splitFragment splits a source path into the path and fragment identifier.
func splitFragment(src string) (path, fragment string) {
	if src == "" {
		return "", ""
	}
	path, fragment, _ = strings.Cut(src, "#")
	return path, fragment
}
