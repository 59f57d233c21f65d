package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrInvalidMimetype    = errors.New("invalid mimetype: must be 'application/epub+zip'")
	ErrMimetypeCompressed = errors.New("mimetype must not be compressed")
	ErrMimetypeNotFirst   = errors.New("mimetype must be the first archive entry")
	ErrMimetypeNotFound   = errors.New("mimetype file not found")
	ErrContainerNotFound  = errors.New("META-INF/container.xml not found")
	ErrOPFPathNotFound    = errors.New("OPF path not found in container.xml")
	errEntryNotFound      = errors.New("entry not found")
)

const opfMediaType = "application/oebps-package+xml"

// Reader gives Inspect access to a packaged book after the OCF checks pass.
type Reader struct {
	zr      *zip.Reader
	byName  map[string]*zip.File
	opfPath string
}

// NewReader opens EPUB bytes, checks the mimetype entry and resolves the
// package document through container.xml.
func NewReader(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	r := &Reader{zr: zr, byName: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		r.byName[cleanEntry(f.Name)] = f
	}

	if err := r.checkMimetype(); err != nil {
		return nil, err
	}
	container, err := r.ReadFile(ContainerPath)
	if err != nil {
		return nil, ErrContainerNotFound
	}
	if r.opfPath, err = rootfilePath(container); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) OPFPath() string {
	return r.opfPath
}

// Names lists entries in archive order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.zr.File))
	for i, f := range r.zr.File {
		names[i] = f.Name
	}
	return names
}

func (r *Reader) ReadFile(name string) ([]byte, error) {
	f, ok := r.byName[cleanEntry(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errEntryNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (r *Reader) checkMimetype() error {
	f, ok := r.byName[MimetypePath]
	switch {
	case !ok:
		return ErrMimetypeNotFound
	case r.zr.File[0] != f:
		return ErrMimetypeNotFirst
	case f.Method != zip.Store:
		return ErrMimetypeCompressed
	}
	data, err := r.ReadFile(MimetypePath)
	if err != nil {
		return err
	}
	if string(data) != Mimetype {
		return ErrInvalidMimetype
	}
	return nil
}

// rootfilePath returns the OPF rootfile, preferring one with the package
// media type.
func rootfilePath(container []byte) (string, error) {
	var c struct {
		Rootfiles []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.Unmarshal(container, &c); err != nil {
		return "", fmt.Errorf("parse container.xml: %w", err)
	}
	if len(c.Rootfiles) == 0 {
		return "", ErrOPFPathNotFound
	}
	for _, rf := range c.Rootfiles {
		if rf.MediaType == opfMediaType {
			return cleanEntry(rf.FullPath), nil
		}
	}
	return cleanEntry(c.Rootfiles[0].FullPath), nil
}

func cleanEntry(name string) string {
	return strings.TrimPrefix(name, "./")
}
