package epub

// OPF represents a parsed Open Package Format document
type OPF struct {
	Metadata      Metadata
	Manifest      map[string]ManifestItem // id -> item
	ManifestOrder []string
	Spine         []SpineItem
	NCXPath       string
}

// Metadata represents the metadata section of the OPF
type Metadata struct {
	Title       string
	Creators    []string
	Language    string
	Identifier  string
	Date        string
	Description string
	CoverID     string // manifest item ID from meta name="cover"
}

// ManifestItem represents an item in the manifest
type ManifestItem struct {
	ID        string
	Href      string
	MediaType string
}

// SpineItem represents an item reference in the spine
type SpineItem struct {
	IDRef  string
	Linear bool
}

// NCX represents the parsed navigation control document.
type NCX struct {
	UID            string
	Depth          int
	TotalPageCount int
	DocTitle       string
	DocAuthor      string
	NavPoints      []NavPoint
}

// NavPoint represents a single navigation point in the table of contents.
type NavPoint struct {
	ID          string
	PlayOrder   int
	Label       string
	ContentPath string // fragment-free, absolute path within EPUB
	Fragment    string // fragment identifier (without #)
}

// Chapter is the article metadata recovered from a chapter document.
type Chapter struct {
	Path     string
	Label    string // "Chapter N" label, empty in the plain variant
	Title    string
	SiteName string
	URL      string
}
