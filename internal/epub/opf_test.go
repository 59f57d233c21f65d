package epub

import (
	"strings"
	"testing"
)

const sampleOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package version="2.0" xmlns="http://www.idpf.org/2007/opf" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Sample Book Title</dc:title>
    <dc:creator opf:role="aut">John Doe</dc:creator>
    <dc:creator opf:role="edt">Jane Editor</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier opf:scheme="ISBN">9780000000000</dc:identifier>
    <dc:identifier id="bookid">urn:uuid:1234</dc:identifier>
    <dc:date>2024-01-01</dc:date>
    <dc:description>This is a sample book description.</dc:description>
    <meta name="cover" content="cover-image"/>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="cover-image" href="images/cover.jpg" media-type="image/jpeg"/>
    <item id="chapter1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="chapter2" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="chapter1"/>
    <itemref idref="chapter2" linear="no"/>
  </spine>
</package>`

func TestParseOPF(t *testing.T) {
	opf, err := ParseOPF([]byte(sampleOPF), "OEBPS")
	if err != nil {
		t.Fatalf("ParseOPF failed: %v", err)
	}

	md := opf.Metadata
	if md.Title != "Sample Book Title" {
		t.Errorf("Title = %q, want %q", md.Title, "Sample Book Title")
	}
	if len(md.Creators) != 2 || md.Creators[0] != "John Doe" {
		t.Errorf("Creators = %v", md.Creators)
	}
	if md.Identifier != "urn:uuid:1234" {
		t.Errorf("Identifier = %q, want the unique-identifier value", md.Identifier)
	}
	if md.Language != "en" || md.Date != "2024-01-01" {
		t.Errorf("Language/Date = %q/%q", md.Language, md.Date)
	}
	if md.Description != "This is a sample book description." {
		t.Errorf("Description = %q", md.Description)
	}
	if md.CoverID != "cover-image" {
		t.Errorf("CoverID = %q, want cover-image", md.CoverID)
	}

	if len(opf.ManifestOrder) != 4 || opf.ManifestOrder[2] != "chapter1" {
		t.Errorf("ManifestOrder = %v", opf.ManifestOrder)
	}
	if got := opf.Manifest["chapter1"].Href; got != "OEBPS/text/chapter1.xhtml" {
		t.Errorf("chapter1 href = %q", got)
	}
	if opf.NCXPath != "OEBPS/toc.ncx" {
		t.Errorf("NCXPath = %q", opf.NCXPath)
	}

	if len(opf.Spine) != 2 {
		t.Fatalf("Spine = %d items, want 2", len(opf.Spine))
	}
	if !opf.Spine[0].Linear || opf.Spine[1].Linear {
		t.Errorf("Spine linear flags = %v, %v", opf.Spine[0].Linear, opf.Spine[1].Linear)
	}

	hrefs, err := opf.SpineHrefs()
	if err != nil {
		t.Fatalf("SpineHrefs() error = %v", err)
	}
	if strings.Join(hrefs, ",") != "OEBPS/text/chapter1.xhtml,OEBPS/text/chapter2.xhtml" {
		t.Errorf("SpineHrefs() = %v", hrefs)
	}
}

func TestParseOPF_MinimalRequired(t *testing.T) {
	opfContent := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Minimal</dc:title>
    <dc:identifier>only-id</dc:identifier>
  </metadata>
  <manifest><item id="c1" href="c1.html" media-type="application/xhtml+xml"/></manifest>
  <spine><itemref idref="c1"/></spine>
</package>`

	opf, err := ParseOPF([]byte(opfContent), "")
	if err != nil {
		t.Fatalf("ParseOPF failed: %v", err)
	}
	if opf.Metadata.Identifier != "only-id" {
		t.Errorf("Identifier = %q, want fallback to first identifier", opf.Metadata.Identifier)
	}
	if opf.NCXPath != "" {
		t.Errorf("NCXPath = %q, want empty without spine toc", opf.NCXPath)
	}
	if got := opf.Manifest["c1"].Href; got != "c1.html" {
		t.Errorf("href = %q, want root-level path", got)
	}
}

func TestParseOPF_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: "<package><metadata>"},
		{
			name: "duplicate manifest id",
			content: `<package xmlns="http://www.idpf.org/2007/opf"><manifest>
<item id="a" href="a.html" media-type="application/xhtml+xml"/>
<item id="a" href="b.html" media-type="application/xhtml+xml"/>
</manifest><spine/></package>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOPF([]byte(tt.content), "OEBPS"); err == nil {
				t.Fatal("ParseOPF() error = nil")
			}
		})
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"", "a.html", "a.html"},
		{".", "a.html", "a.html"},
		{"OEBPS", "a.html", "OEBPS/a.html"},
		{"OEBPS/", "text/a.html", "OEBPS/text/a.html"},
		{"OEBPS/text", "../images/c.jpg", "OEBPS/images/c.jpg"},
	}
	for _, tt := range tests {
		if got := joinPath(tt.base, tt.rel); got != tt.want {
			t.Errorf("joinPath(%q, %q) = %q, want %q", tt.base, tt.rel, got, tt.want)
		}
	}
}
