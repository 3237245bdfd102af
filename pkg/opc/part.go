package opc

// Part represents an element within an OPC package.
type Part interface {
	PartName() PackURI
	ContentType() string
	Blob() ([]byte, error)
	Rels() *Relationships
	SetRels(rels *Relationships)
	BeforeMarshal()
	AfterUnmarshal()
}

// BasePart is the base implementation of the Part interface for binary parts.
type BasePart struct {
	partName    PackURI
	contentType string
	blob        []byte
	rels        *Relationships
	pkg         *OpcPackage
}

// NewBasePart creates a new BasePart.
func NewBasePart(partName PackURI, contentType string, blob []byte, pkg *OpcPackage) *BasePart {
	return &BasePart{
		partName:    partName,
		contentType: contentType,
		blob:        blob,
		pkg:         pkg,
		rels:        NewRelationships(partName.BaseURI()),
	}
}

func (p *BasePart) PartName() PackURI           { return p.partName }
func (p *BasePart) ContentType() string         { return p.contentType }
func (p *BasePart) Blob() ([]byte, error)       { return p.blob, nil }
func (p *BasePart) Rels() *Relationships        { return p.rels }
func (p *BasePart) SetRels(rels *Relationships) { p.rels = rels }
func (p *BasePart) Package() *OpcPackage        { return p.pkg }
func (p *BasePart) BeforeMarshal()              {}
func (p *BasePart) AfterUnmarshal()             {}

// SetPartName updates the part name.
func (p *BasePart) SetPartName(pn PackURI) {
	p.partName = pn
}

// SetBlob replaces the blob.
func (p *BasePart) SetBlob(blob []byte) {
	p.blob = blob
}
