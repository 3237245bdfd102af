package opc

// Content type strings for the parts this package understands. Unrecognized
// parts keep whatever content type [Content_Types].xml declares for them;
// these constants are only needed where this package creates or classifies
// a part itself.
const (
	CTWmlDocumentMain = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	CTWmlSettings     = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
	CTWmlStyles       = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	CTWmlComments     = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	CTWmlNumbering    = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	CTWmlFontTable    = "application/vnd.openxmlformats-officedocument.wordprocessingml.fontTable+xml"
	CTWmlFooter       = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	CTWmlHeader       = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	CTWmlFootnotes    = "application/vnd.openxmlformats-officedocument.wordprocessingml.footnotes+xml"
	CTWmlEndnotes     = "application/vnd.openxmlformats-officedocument.wordprocessingml.endnotes+xml"
	CTWmlWebSettings  = "application/vnd.openxmlformats-officedocument.wordprocessingml.webSettings+xml"
	CTTheme           = "application/vnd.openxmlformats-officedocument.theme+xml"
	CTCoreProps       = "application/vnd.openxmlformats-package.core-properties+xml"
	CTExtendedProps   = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	CTJpeg            = "image/jpeg"
	CTPng             = "image/png"
	CTXml             = "application/xml"
	CTPlain           = "text/plain"
)

// Relationship type URIs referenced throughout part discovery. Every
// relationship this package writes itself uses one of these; other
// relationship types encountered during reads (e.g. custom XML parts) are
// carried through unmodified without needing a named constant.
const (
	RTOfficeDocument   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RTCoreProperties   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RTExtendedProperties = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RTStyles           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RTSettings         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	RTNumbering        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	RTComments         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	RTFootnotes        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes"
	RTEndnotes         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/endnotes"
	RTFontTable        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/fontTable"
	RTTheme            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RTWebSettings      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/webSettings"
	RTHeader           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RTFooter           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	RTImage            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RTHyperlink        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RTThumbnail        = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail"
)

// contentTypesPartname is the fixed, well-known part name for the content
// type stream every OPC package carries at its root.
const contentTypesPartname = "/[Content_Types].xml"

// packageRelsPartname is the package-level relationships part.
const packageRelsPartname = "/_rels/.rels"
