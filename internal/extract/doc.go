// Package extract downloads web pages and turns them into articles ready for
// EPUB packaging.
//
// A Fetcher handles the network side: user agent fallback, per-host pacing,
// robots.txt, body limits and charset decoding. An Extractor runs readability
// over the page, sanitises the result and re-renders it as an XHTML fragment
// that can be embedded verbatim in a chapter.
package extract
