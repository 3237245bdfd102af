package opc

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// PackageWriter serializes an in-memory package graph back to a zip archive.
type PackageWriter struct{}

// Write emits [Content_Types].xml, the package-level .rels, every part's
// blob at its PackURI path, and each part's own .rels file (if it has any
// relationships), to w.
func (pw *PackageWriter) Write(w io.Writer, pkgRels *Relationships, parts []Part) error {
	zw := zip.NewWriter(w)

	ctMap := NewContentTypeMapForParts(parts)
	ctBlob, err := ctMap.Serialize()
	if err != nil {
		return err
	}
	if err := writeZipEntry(zw, strings.TrimPrefix(contentTypesPartname, "/"), ctBlob); err != nil {
		return err
	}

	if len(pkgRels.All()) > 0 {
		relsBlob, err := serializeRelationships(pkgRels)
		if err != nil {
			return err
		}
		if err := writeZipEntry(zw, strings.TrimPrefix(packageRelsPartname, "/"), relsBlob); err != nil {
			return err
		}
	}

	for _, part := range parts {
		blob, err := part.Blob()
		if err != nil {
			return fmt.Errorf("opc: serializing part %q: %w", part.PartName(), err)
		}
		if blob != nil {
			name := strings.TrimPrefix(string(part.PartName()), "/")
			if err := writeZipEntry(zw, name, blob); err != nil {
				return err
			}
		}

		if len(part.Rels().All()) > 0 {
			relsBlob, err := serializeRelationships(part.Rels())
			if err != nil {
				return err
			}
			name := strings.TrimPrefix(string(part.PartName().RelsURI()), "/")
			if err := writeZipEntry(zw, name, relsBlob); err != nil {
				return err
			}
		}
	}

	return zw.Close()
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("opc: creating zip entry %q: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("opc: writing zip entry %q: %w", name, err)
	}
	return nil
}
