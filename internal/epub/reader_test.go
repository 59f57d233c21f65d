package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

type testEntry struct {
	name   string
	body   string
	method uint16
}

// zipBytes assembles an archive with entries in the given order.
func zipBytes(t *testing.T, entries []testEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		if err != nil {
			t.Fatalf("failed to create %s: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.body)); err != nil {
			t.Fatalf("failed to write %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

const testContainer = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func TestNewReader_Valid(t *testing.T) {
	data := zipBytes(t, []testEntry{
		{name: "mimetype", body: "application/epub+zip", method: zip.Store},
		{name: "META-INF/container.xml", body: testContainer, method: zip.Deflate},
	})
	r, err := NewReader(data)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if r.OPFPath() != "OEBPS/content.opf" {
		t.Errorf("OPFPath() = %q", r.OPFPath())
	}
	if _, err := r.ReadFile("./META-INF/container.xml"); err != nil {
		t.Errorf("ReadFile() with ./ prefix error = %v", err)
	}
	if _, err := r.ReadFile("missing.html"); err == nil {
		t.Errorf("ReadFile() missing file error = nil")
	}
}

func TestNewReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []testEntry
		want    error
	}{
		{
			name: "no mimetype",
			entries: []testEntry{
				{name: "META-INF/container.xml", body: testContainer, method: zip.Deflate},
			},
			want: ErrMimetypeNotFound,
		},
		{
			name: "mimetype not first",
			entries: []testEntry{
				{name: "META-INF/container.xml", body: testContainer, method: zip.Deflate},
				{name: "mimetype", body: "application/epub+zip", method: zip.Store},
			},
			want: ErrMimetypeNotFirst,
		},
		{
			name: "mimetype compressed",
			entries: []testEntry{
				{name: "mimetype", body: "application/epub+zip", method: zip.Deflate},
				{name: "META-INF/container.xml", body: testContainer, method: zip.Deflate},
			},
			want: ErrMimetypeCompressed,
		},
		{
			name: "wrong mimetype",
			entries: []testEntry{
				{name: "mimetype", body: "application/zip", method: zip.Store},
				{name: "META-INF/container.xml", body: testContainer, method: zip.Deflate},
			},
			want: ErrInvalidMimetype,
		},
		{
			name: "no container",
			entries: []testEntry{
				{name: "mimetype", body: "application/epub+zip", method: zip.Store},
			},
			want: ErrContainerNotFound,
		},
		{
			name: "container without rootfile",
			entries: []testEntry{
				{name: "mimetype", body: "application/epub+zip", method: zip.Store},
				{name: "META-INF/container.xml", body: `<container><rootfiles></rootfiles></container>`, method: zip.Deflate},
			},
			want: ErrOPFPathNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(zipBytes(t, tt.entries))
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewReader() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewReader_NotZip(t *testing.T) {
	if _, err := NewReader([]byte("definitely not a zip")); err == nil {
		t.Fatal("NewReader() error = nil for non-zip input")
	}
}

func TestInspect_BuiltBook(t *testing.T) {
	data, err := BuildEPUB(testCollection(2), fixedOptions(VariantCover))
	if err != nil {
		t.Fatalf("BuildEPUB() error = %v", err)
	}
	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Title() != "Weekly Reading" {
		t.Errorf("Title() = %q", info.Title())
	}
	if info.OPF.Metadata.Identifier != "123e4567-e89b-42d3-a456-426614174000" {
		t.Errorf("Identifier = %q", info.OPF.Metadata.Identifier)
	}
	if info.OPF.Metadata.Date != "2026-03-14" {
		t.Errorf("Date = %q", info.OPF.Metadata.Date)
	}
	if info.OPF.Metadata.Language != "en" {
		t.Errorf("Language = %q", info.OPF.Metadata.Language)
	}
	if info.NCX == nil || info.NCX.UID != info.OPF.Metadata.Identifier {
		t.Errorf("NCX uid does not match dc:identifier")
	}
	if len(info.Chapters) != 2 {
		t.Fatalf("Chapters = %d, want 2", len(info.Chapters))
	}
	if info.Chapters[1].Title != "Second Post" || info.Chapters[1].SiteName != "Example Site" {
		t.Errorf("Chapters[1] = %+v", info.Chapters[1])
	}
	if info.Entries[0] != "mimetype" {
		t.Errorf("Entries[0] = %q", info.Entries[0])
	}
}

func TestInspect_SpineReferencesMissingItem(t *testing.T) {
	opf := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Broken</dc:title></metadata>
  <manifest>
    <item id="chapter1" href="chapter1.html" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="chapter1"/>
    <itemref idref="chapter2"/>
  </spine>
</package>`
	data := zipBytes(t, []testEntry{
		{name: "mimetype", body: "application/epub+zip", method: zip.Store},
		{name: "META-INF/container.xml", body: testContainer, method: zip.Deflate},
		{name: "OEBPS/content.opf", body: opf, method: zip.Deflate},
		{name: "OEBPS/chapter1.html", body: "<html><body><h1>One</h1></body></html>", method: zip.Deflate},
	})
	if _, err := Inspect(data); err == nil {
		t.Fatal("Inspect() error = nil, want missing manifest item")
	}
}

func TestRootfilePath(t *testing.T) {
	tests := []struct {
		name      string
		container string
		want      string
	}{
		{
			name:      "package media type wins",
			container: `<container><rootfiles><rootfile full-path="alt.xml" media-type="text/xml"/><rootfile full-path="./OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`,
			want:      "OEBPS/content.opf",
		},
		{
			name:      "first rootfile otherwise",
			container: `<container><rootfiles><rootfile full-path="book.opf"/><rootfile full-path="other.opf"/></rootfiles></container>`,
			want:      "book.opf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rootfilePath([]byte(tt.container))
			if err != nil {
				t.Fatalf("rootfilePath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("rootfilePath() = %q, want %q", got, tt.want)
			}
		})
	}
}
