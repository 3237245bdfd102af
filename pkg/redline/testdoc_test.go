package redline

import (
	"testing"

	"github.com/beevik/etree"

	"github.com/vortex/docx-api/pkg/opc"
	"github.com/vortex/docx-api/pkg/oxml"
)

// newTestDoc builds a minimal in-memory Doc around bodyInner (raw w:body
// children XML), skipping the zip/OPC round-trip so tests can focus on the
// redline engine itself.
func newTestDoc(t *testing.T, bodyInner string) *Doc {
	t.Helper()
	xmlStr := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + bodyInner + `</w:body></w:document>`

	root, err := oxml.ParseXml([]byte(xmlStr))
	if err != nil {
		t.Fatalf("parsing test document: %v", err)
	}

	pkg := opc.NewOpcPackage(nil)
	mainPart := opc.NewXmlPartFromElement("/word/document.xml", opc.CTWmlDocumentMain, root, pkg)
	pkg.AddPart(mainPart)
	pkg.RelateTo(mainPart, opc.RTOfficeDocument)

	body := findChild(root, "w", "body")
	if body == nil {
		t.Fatal("test document has no w:body")
	}

	return &Doc{pkg: pkg, mainPart: mainPart, body: body}
}

func run(text string) string {
	return `<w:r><w:t>` + text + `</w:t></w:r>`
}

func boldRun(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t>` + text + `</w:t></w:r>`
}

func para(runs ...string) string {
	out := "<w:p>"
	for _, r := range runs {
		out += r
	}
	return out + "</w:p>"
}

// findAllByTag recursively collects every descendant of el matching
// space/tag, in document order.
func findAllByTag(el *etree.Element, space, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Space == space && c.Tag == tag {
			out = append(out, c)
		}
		out = append(out, findAllByTag(c, space, tag)...)
	}
	return out
}
