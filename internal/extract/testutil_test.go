package extract

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// articlePage renders a page with enough prose for readability to pick up.
func articlePage(title, siteName string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s | Fallback</title>", title)
	fmt.Fprintf(&b, `<meta property="og:title" content="%s">`, title)
	if siteName != "" {
		fmt.Fprintf(&b, `<meta property="og:site_name" content="%s">`, siteName)
	}
	b.WriteString(`<meta name="description" content="A short summary of the post.">`)
	b.WriteString(`<meta name="author" content="Jane Writer">`)
	b.WriteString(`<meta property="og:image" content="/images/lead.png">`)
	b.WriteString("</head><body><nav><a href=\"/\">Home</a></nav><article>")
	fmt.Fprintf(&b, "<h1>%s</h1>", title)
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "<p>Paragraph %d explains the topic in some detail, with enough words, commas, and sentences "+
			"to look like real prose. It keeps going so that the readability scorer treats it as content, "+
			"and it even links to <a href=\"/related/%d\">a related page</a>.</p>", i, i)
	}
	b.WriteString(`<script>alert("x")</script><img src="/images/inline.png" alt="inline">`)
	b.WriteString("</article><footer>Copyright</footer></body></html>")
	return b.String()
}
