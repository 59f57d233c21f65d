package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"hash/crc32"
	"time"
)

// File is one named entry of an EPUB container.
type File struct {
	Name string
	Data []byte
}

// Package is the in-memory file set produced by Build, in archive order.
type Package struct {
	Identifier string
	Modified   time.Time
	Files      []File
}

func (p *Package) add(name string, data []byte) {
	p.Files = append(p.Files, File{Name: name, Data: data})
}

// File returns the content of the named entry.
func (p *Package) File(name string) ([]byte, bool) {
	for _, f := range p.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

// Names lists entry names in archive order.
func (p *Package) Names() []string {
	names := make([]string, len(p.Files))
	for i, f := range p.Files {
		names[i] = f.Name
	}
	return names
}

var errNoMimetype = errors.New("package has no mimetype entry")

// Pack serialises the package as an OCF ZIP. The mimetype entry is always
// written first and stored uncompressed; everything else is deflated. The
// archive is assembled in memory and only returned once complete.
func Pack(p *Package) ([]byte, error) {
	mimetype, ok := p.File(MimetypePath)
	if !ok {
		return nil, &PackagingError{Entry: MimetypePath, Err: errNoMimetype}
	}

	modified := p.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeMimetype(zw, mimetype); err != nil {
		return nil, err
	}
	for _, f := range p.Files {
		if f.Name == MimetypePath {
			continue
		}
		if err := writeEntry(zw, f.Name, f.Data, modified); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &PackagingError{Err: err}
	}
	return buf.Bytes(), nil
}

// writeMimetype stores the mimetype with sizes and CRC in the local header,
// no data descriptor and no extra field, so readers can sniff the first
// bytes of the archive.
func writeMimetype(zw *zip.Writer, data []byte) error {
	size := uint64(len(data))
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               MimetypePath,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   size,
		UncompressedSize64: size,
	})
	if err != nil {
		return &PackagingError{Entry: MimetypePath, Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &PackagingError{Entry: MimetypePath, Err: err}
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return &PackagingError{Entry: name, Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &PackagingError{Entry: name, Err: err}
	}
	return nil
}
