package opc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// PhysPkgReader reads the raw zip members of an OPC package, keyed by
// part name. It is the only layer that knows the package is physically a
// zip archive.
type PhysPkgReader struct {
	zr      *zip.Reader
	closer  io.Closer // non-nil when the reader owns the underlying file
	byName  map[string]*zip.File
}

// NewPhysPkgReader wraps an io.ReaderAt of the given size as a zip-backed
// package reader.
func NewPhysPkgReader(r io.ReaderAt, size int64) (*PhysPkgReader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, NewMalformedPackageError(err, "opc: not a valid zip archive: %v", err)
	}
	return newPhysPkgReader(zr, nil), nil
}

// NewPhysPkgReaderFromFile opens a package from a file path.
func NewPhysPkgReaderFromFile(path string) (*PhysPkgReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewMalformedPackageError(err, "opc: opening %q: %v", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, NewMalformedPackageError(err, "opc: stat %q: %v", path, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, NewMalformedPackageError(err, "opc: %q is not a valid zip archive: %v", path, err)
	}
	return newPhysPkgReader(zr, f), nil
}

// NewPhysPkgReaderFromBytes opens a package from an in-memory byte slice.
func NewPhysPkgReaderFromBytes(data []byte) (*PhysPkgReader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, NewMalformedPackageError(err, "opc: not a valid zip archive: %v", err)
	}
	return newPhysPkgReader(zr, nil), nil
}

func newPhysPkgReader(zr *zip.Reader, closer io.Closer) *PhysPkgReader {
	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[normalizeZipName(f.Name)] = f
	}
	return &PhysPkgReader{zr: zr, closer: closer, byName: byName}
}

// normalizeZipName maps a zip member path to the PackURI form used
// elsewhere in this package: forward slashes, leading "/".
func normalizeZipName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

// Close releases the underlying file, if this reader owns one.
func (r *PhysPkgReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ContentTypesXml returns the raw bytes of [Content_Types].xml.
func (r *PhysPkgReader) ContentTypesXml() ([]byte, error) {
	return r.blobFor(contentTypesPartname)
}

// BlobFor returns the raw bytes of the given part. Returns ErrMemberNotFound
// if the archive has no such member.
func (r *PhysPkgReader) BlobFor(partname PackURI) ([]byte, error) {
	return r.blobFor(string(partname))
}

// RelsXmlFor returns the raw bytes of the .rels part for sourceURI, or
// (nil, nil) if that .rels part does not exist — a source with no
// relationships of its own simply has no .rels member.
func (r *PhysPkgReader) RelsXmlFor(sourceURI PackURI) ([]byte, error) {
	blob, err := r.blobFor(string(sourceURI.RelsURI()))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return blob, nil
}

func (r *PhysPkgReader) blobFor(name string) ([]byte, error) {
	f, ok := r.byName[normalizeZipName(name)]
	if !ok {
		return nil, ErrMemberNotFound
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opc: opening zip member %q: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("opc: reading zip member %q: %w", name, err)
	}
	return data, nil
}
