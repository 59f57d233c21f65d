package epub

import (
	"fmt"
	"strings"
	"time"

	"github.com/yuanying/linkpub/internal/article"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

const xhtmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en">
`

const chapterStyle = `body { font-family: Georgia, serif; line-height: 1.6; margin: 1em; }
h1 { font-size: 1.6em; margin-bottom: 0.4em; }
.chapter-number { font-size: 0.9em; color: #666; text-transform: uppercase; letter-spacing: 0.1em; }
.article-meta { font-size: 0.85em; color: #555; border-bottom: 1px solid #ccc; padding-bottom: 0.6em; margin-bottom: 1.2em; }
.article-meta p { margin: 0.2em 0; }
.article-content img { max-width: 100%; height: auto; }
pre { white-space: pre-wrap; }`

const coverStyle = `body { font-family: Georgia, serif; text-align: center; margin: 2em 1em; }
h1 { font-size: 2em; margin-top: 2em; }
.author { font-size: 1.2em; margin-top: 1em; }
.count, .generated { font-size: 0.9em; color: #666; }
.cover-image img { max-width: 100%; max-height: 60%; }
.toc ol { text-align: left; }`

// document holds the state of one render.
type document struct {
	collection article.Collection
	variant    Variant
	identifier string
	builtAt    time.Time
	coverImage []byte
}

func (d *document) hasCover() bool {
	return d.variant == VariantCover
}

func (d *document) render() *Package {
	pkg := &Package{
		Identifier: d.identifier,
		Modified:   d.builtAt,
	}
	pkg.add(MimetypePath, []byte(Mimetype))
	pkg.add(ContainerPath, []byte(containerXML))
	pkg.add(OPFPath, []byte(d.contentOPF()))
	pkg.add(NCXPath, []byte(d.tocNCX()))
	if d.hasCover() {
		pkg.add(CoverPagePath, []byte(d.coverPage()))
		pkg.add(TOCPagePath, []byte(d.tocPage()))
	}
	for i, a := range d.collection.Articles {
		pkg.add(ChapterPath(i+1), []byte(d.chapter(i+1, a)))
	}
	if d.hasCover() && d.coverImage != nil {
		pkg.add(CoverImgPath, d.coverImage)
	}
	return pkg
}

func (d *document) contentOPF() string {
	c := d.collection
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<package xmlns="http://www.idpf.org/2007/opf" unique-identifier="BookId" version="2.0">` + "\n")
	b.WriteString(`  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">` + "\n")
	fmt.Fprintf(&b, "    <dc:identifier id=\"BookId\" opf:scheme=\"UUID\">%s</dc:identifier>\n", article.EscapeXML(d.identifier))
	fmt.Fprintf(&b, "    <dc:title>%s</dc:title>\n", article.EscapeXML(c.ResolvedTitle()))
	fmt.Fprintf(&b, "    <dc:creator opf:role=\"aut\">%s</dc:creator>\n", article.EscapeXML(c.ResolvedAuthor()))
	b.WriteString("    <dc:language>en</dc:language>\n")
	fmt.Fprintf(&b, "    <dc:date>%s</dc:date>\n", d.builtAt.Format("2006-01-02"))
	if desc := c.Description(); desc != "" {
		fmt.Fprintf(&b, "    <dc:description>%s</dc:description>\n", article.EscapeXML(desc))
	}
	if d.coverImage != nil {
		b.WriteString(`    <meta name="cover" content="cover-image"/>` + "\n")
	}
	b.WriteString("  </metadata>\n")

	b.WriteString("  <manifest>\n")
	b.WriteString(`    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + "\n")
	if d.hasCover() {
		b.WriteString(`    <item id="cover" href="cover.html" media-type="application/xhtml+xml"/>` + "\n")
		b.WriteString(`    <item id="toc-page" href="toc.html" media-type="application/xhtml+xml"/>` + "\n")
	}
	for i := range c.Articles {
		fmt.Fprintf(&b, "    <item id=\"chapter%d\" href=\"chapter%d.html\" media-type=\"application/xhtml+xml\"/>\n", i+1, i+1)
	}
	if d.coverImage != nil {
		b.WriteString(`    <item id="cover-image" href="images/cover.jpg" media-type="image/jpeg"/>` + "\n")
	}
	b.WriteString("  </manifest>\n")

	b.WriteString(`  <spine toc="ncx">` + "\n")
	if d.hasCover() {
		b.WriteString(`    <itemref idref="cover"/>` + "\n")
		b.WriteString(`    <itemref idref="toc-page"/>` + "\n")
	}
	for i := range c.Articles {
		fmt.Fprintf(&b, "    <itemref idref=\"chapter%d\"/>\n", i+1)
	}
	b.WriteString("  </spine>\n")

	if d.hasCover() {
		b.WriteString("  <guide>\n")
		b.WriteString(`    <reference type="cover" title="Cover" href="cover.html"/>` + "\n")
		b.WriteString(`    <reference type="toc" title="Table of Contents" href="toc.html"/>` + "\n")
		b.WriteString("  </guide>\n")
	}
	b.WriteString("</package>\n")
	return b.String()
}

func (d *document) tocNCX() string {
	c := d.collection
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE ncx PUBLIC "-//NISO//DTD ncx 2005-1//EN" "http://www.daisy.org/z3986/2005/ncx-2005-1.dtd">` + "\n")
	b.WriteString(`<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">` + "\n")
	b.WriteString("  <head>\n")
	fmt.Fprintf(&b, "    <meta name=\"dtb:uid\" content=\"%s\"/>\n", article.EscapeXML(d.identifier))
	b.WriteString(`    <meta name="dtb:depth" content="1"/>` + "\n")
	fmt.Fprintf(&b, "    <meta name=\"dtb:totalPageCount\" content=\"%d\"/>\n", estimatedPages(c.TotalWords()))
	b.WriteString(`    <meta name="dtb:maxPageNumber" content="0"/>` + "\n")
	b.WriteString("  </head>\n")
	fmt.Fprintf(&b, "  <docTitle><text>%s</text></docTitle>\n", article.EscapeXML(c.ResolvedTitle()))
	fmt.Fprintf(&b, "  <docAuthor><text>%s</text></docAuthor>\n", article.EscapeXML(c.ResolvedAuthor()))
	b.WriteString("  <navMap>\n")

	order := 1
	if d.hasCover() {
		writeNavPoint(&b, order, "Table of Contents", "toc.html")
		order++
	}
	for i, a := range c.Articles {
		writeNavPoint(&b, order, a.ResolvedTitle(), fmt.Sprintf("chapter%d.html", i+1))
		order++
	}
	b.WriteString("  </navMap>\n")
	b.WriteString("</ncx>\n")
	return b.String()
}

func writeNavPoint(b *strings.Builder, order int, label, src string) {
	fmt.Fprintf(b, "    <navPoint id=\"navpoint-%d\" playOrder=\"%d\">\n", order, order)
	fmt.Fprintf(b, "      <navLabel><text>%s</text></navLabel>\n", article.EscapeXML(label))
	fmt.Fprintf(b, "      <content src=\"%s\"/>\n", src)
	b.WriteString("    </navPoint>\n")
}

func (d *document) chapter(n int, a article.Article) string {
	title := article.EscapeXML(a.ResolvedTitle())
	var b strings.Builder
	b.WriteString(xhtmlHeader)
	b.WriteString("<head>\n")
	b.WriteString(`<meta http-equiv="Content-Type" content="application/xhtml+xml; charset=utf-8"/>` + "\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	fmt.Fprintf(&b, "<style type=\"text/css\">\n%s\n</style>\n", chapterStyle)
	b.WriteString("</head>\n<body>\n")
	if d.hasCover() {
		fmt.Fprintf(&b, "<p class=\"chapter-number\">Chapter %d</p>\n", n)
	}
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	b.WriteString("<div class=\"article-meta\">\n")
	fmt.Fprintf(&b, "<p class=\"source\"><strong>Source:</strong> %s</p>\n", article.EscapeXML(a.ResolvedSiteName()))
	if a.URL != "" {
		url := article.EscapeXML(a.URL)
		fmt.Fprintf(&b, "<p class=\"url\"><strong>URL:</strong> <a href=\"%s\">%s</a></p>\n", url, url)
	}
	if a.WordCount > 0 {
		fmt.Fprintf(&b, "<p class=\"word-count\"><strong>Words:</strong> %d</p>\n", a.WordCount)
	}
	b.WriteString("</div>\n")
	b.WriteString("<div class=\"article-content\">\n")
	b.WriteString(a.Content)
	b.WriteString("\n</div>\n</body>\n</html>\n")
	return b.String()
}

func (d *document) coverPage() string {
	c := d.collection
	var b strings.Builder
	b.WriteString(xhtmlHeader)
	b.WriteString("<head>\n")
	b.WriteString(`<meta http-equiv="Content-Type" content="application/xhtml+xml; charset=utf-8"/>` + "\n")
	b.WriteString("<title>Cover</title>\n")
	fmt.Fprintf(&b, "<style type=\"text/css\">\n%s\n</style>\n", coverStyle)
	b.WriteString("</head>\n<body>\n")
	if d.coverImage != nil {
		b.WriteString(`<div class="cover-image"><img src="images/cover.jpg" alt="Cover"/></div>` + "\n")
	}
	fmt.Fprintf(&b, "<h1>%s</h1>\n", article.EscapeXML(c.ResolvedTitle()))
	fmt.Fprintf(&b, "<p class=\"author\">by %s</p>\n", article.EscapeXML(c.ResolvedAuthor()))
	fmt.Fprintf(&b, "<p class=\"count\">%s</p>\n", articleCount(len(c.Articles)))
	fmt.Fprintf(&b, "<p class=\"generated\">Generated on %s</p>\n", d.builtAt.Format("January 2, 2006 15:04 UTC"))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func (d *document) tocPage() string {
	var b strings.Builder
	b.WriteString(xhtmlHeader)
	b.WriteString("<head>\n")
	b.WriteString(`<meta http-equiv="Content-Type" content="application/xhtml+xml; charset=utf-8"/>` + "\n")
	b.WriteString("<title>Table of Contents</title>\n")
	fmt.Fprintf(&b, "<style type=\"text/css\">\n%s\n</style>\n", coverStyle)
	b.WriteString("</head>\n<body>\n<div class=\"toc\">\n<h1>Table of Contents</h1>\n<ol>\n")
	for i, a := range d.collection.Articles {
		fmt.Fprintf(&b, "<li><a href=\"chapter%d.html\">%s</a></li>\n", i+1, article.EscapeXML(a.ResolvedTitle()))
	}
	b.WriteString("</ol>\n</div>\n</body>\n</html>\n")
	return b.String()
}

func articleCount(n int) string {
	if n == 1 {
		return "1 article"
	}
	return fmt.Sprintf("%d articles", n)
}
