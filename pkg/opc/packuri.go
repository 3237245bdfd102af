package opc

import (
	"path"
	"strings"
)

// PackURI is a part name within an OPC package, always starting with "/",
// e.g. "/word/document.xml".
//
// Mirrors Python docx.opc.packuri.PackURI.
type PackURI string

// PackageURI is the pseudo part name used as the source of package-level
// relationships (the package root itself).
const PackageURI PackURI = "/"

// BaseURI returns the directory portion of the part name, e.g.
// "/word" for "/word/document.xml", or "/" for "/document.xml".
func (pn PackURI) BaseURI() string {
	dir := path.Dir(string(pn))
	if dir == "." {
		return "/"
	}
	return dir
}

// Ext returns the file extension of the part name, without the leading dot,
// e.g. "xml" for "/word/document.xml". Returns "" if there is none.
func (pn PackURI) Ext() string {
	ext := path.Ext(string(pn))
	return strings.TrimPrefix(ext, ".")
}

// RelsURI returns the .rels part name that carries this part's relationships,
// e.g. "/word/_rels/document.xml.rels" for "/word/document.xml", or
// "/_rels/.rels" for the package pseudo-part "/".
func (pn PackURI) RelsURI() PackURI {
	if pn == PackageURI {
		return "/_rels/.rels"
	}
	dir, file := path.Split(string(pn))
	dir = strings.TrimSuffix(dir, "/")
	return PackURI(dir + "/_rels/" + file + ".rels")
}

// FromRelRef resolves a relationship TargetRef (a relative or absolute URI
// found in a .rels file) against baseURI into an absolute PackURI.
//
// Mirrors Python PackURI.from_rel_ref.
func FromRelRef(baseURI, relRef string) PackURI {
	if strings.HasPrefix(relRef, "/") {
		return PackURI(path.Clean(relRef))
	}
	joined := path.Join(baseURI, relRef)
	return PackURI(joined)
}
