package redline

import (
	"strconv"
	"unicode"

	"github.com/beevik/etree"

	"github.com/vortex/docx-api/pkg/oxml"
)

// maxRevisionID scans body for existing w:ins/w:del elements and returns the
// largest w:id found, or 0 if none exist. The engine allocates fresh ids
// starting at max+1, per §9 ("allocate it freshly from the maximum observed
// id in the opened tree").
func maxRevisionID(body *etree.Element) int {
	max := 0
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Space == "w" && (el.Tag == "ins" || el.Tag == "del") {
			if v := attrVal(el, "w", "id"); v != "" {
				if n, err := strconv.Atoi(v); err == nil && n > max {
					max = n
				}
			}
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(body)
	return max
}

// attrVal returns the value of a namespace-prefixed attribute, or "".
func attrVal(el *etree.Element, space, key string) string {
	for _, attr := range el.Attr {
		if attr.Space == space && attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// wrapRun replaces run in its parent with <tag w:id w:author w:date>run</tag>.
func wrapRun(run *etree.Element, tag string, id int, author, date string) *etree.Element {
	parent := run.Parent()
	idx := childIndex(parent, run)

	wrapper := oxml.OxmlElement(tag)
	wrapper.CreateAttr("w:id", strconv.Itoa(id))
	wrapper.CreateAttr("w:author", author)
	wrapper.CreateAttr("w:date", date)

	parent.RemoveChild(run)
	wrapper.AddChild(run)
	parent.InsertChildAt(idx, wrapper)
	return wrapper
}

// retagTextToDelText renames every direct <w:t> child of run to <w:delText>,
// keeping its text and xml:space attribute — the distinct element type a
// reader uses to recognize deleted, non-live text.
func retagTextToDelText(run *etree.Element) {
	for _, child := range run.ChildElements() {
		if child.Space == "w" && child.Tag == "t" {
			child.Tag = "delText"
		}
	}
}

// wrapRunsInDel retags each run's text node to w:delText and wraps the run
// in its own <w:del>, all sharing revisionID. Returns the wrapper elements
// in document order.
func wrapRunsInDel(runs []*etree.Element, revisionID int, author, date string) []*etree.Element {
	wrappers := make([]*etree.Element, 0, len(runs))
	for _, run := range runs {
		retagTextToDelText(run)
		wrappers = append(wrappers, wrapRun(run, "w:del", revisionID, author, date))
	}
	return wrappers
}

// buildInsertRun constructs a fresh <w:r> holding newText, with a deep copy
// of styleSource's <w:rPr> (if styleSource is non-nil), and xml:space set
// per newText's leading/trailing whitespace.
func buildInsertRun(newText string, styleSource *etree.Element) *etree.Element {
	run := oxml.OxmlElement("w:r")
	if styleSource != nil {
		if rPr := findChild(styleSource, "w", "rPr"); rPr != nil {
			run.AddChild(rPr.Copy())
		}
	}
	t := oxml.OxmlElement("w:t")
	t.SetText(newText)
	ensurePreserveSpace(t)
	run.AddChild(t)
	return run
}

// styleInheritanceSource implements the style-inheritance rule (§4.4): the
// inserted run copies followingRun's properties when newText ends with
// whitespace and followingRun exists; otherwise it copies precedingRun's
// properties, falling back to followingRun if there is no preceding run
// (insertion at document start).
func styleInheritanceSource(newText string, precedingRun, followingRun *etree.Element) *etree.Element {
	if endsWithSpace(newText) && followingRun != nil {
		return followingRun
	}
	if precedingRun != nil {
		return precedingRun
	}
	return followingRun
}

func endsWithSpace(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return unicode.IsSpace(r[len(r)-1])
}

// siblingElement returns the *etree.Element delta positions away from el in
// its parent's children (delta may be negative), or nil if there is none or
// the neighbor isn't an element (e.g. mixed text content).
func siblingElement(el *etree.Element, delta int) *etree.Element {
	parent := el.Parent()
	if parent == nil {
		return nil
	}
	idx := childIndex(parent, el)
	if idx < 0 {
		return nil
	}
	target := idx + delta
	if target < 0 || target >= len(parent.Child) {
		return nil
	}
	if e, ok := parent.Child[target].(*etree.Element); ok {
		return e
	}
	return nil
}

// insertWrapperBefore inserts wrapper as the immediate previous sibling of
// ref in ref's parent.
func insertWrapperBefore(ref, wrapper *etree.Element) {
	parent := ref.Parent()
	idx := childIndex(parent, ref)
	parent.InsertChildAt(idx, wrapper)
}

// insertWrapperAfter inserts wrapper as the immediate next sibling of ref in
// ref's parent.
func insertWrapperAfter(ref, wrapper *etree.Element) {
	parent := ref.Parent()
	idx := childIndex(parent, ref)
	parent.InsertChildAt(idx+1, wrapper)
}
