package redline

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/vortex/docx-api/pkg/oxml"
)

// maxCommentID scans the comments tree for the largest existing w:comment
// id and returns it, or 0 if the tree has no comments yet.
func maxCommentID(commentsRoot *etree.Element) int {
	max := 0
	for _, c := range commentsRoot.ChildElements() {
		if c.Space != "w" || c.Tag != "comment" {
			continue
		}
		if v := attrVal(c, "w", "id"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

// attachComment implements C3's attach_comment contract (§4.3): it anchors a
// comment around [firstEl, lastEl] (the wrapper or run elements bounding the
// edited region, in document order, both children of the same parent) and
// appends a new entry to the comments part. Returns the freshly allocated
// comment id.
func attachComment(doc *Doc, firstEl, lastEl *etree.Element, text, author, initials, date string) int {
	commentsRoot := doc.commentsTree()
	id := maxCommentID(commentsRoot) + 1
	idStr := strconv.Itoa(id)

	rangeStart := oxml.OxmlElement("w:commentRangeStart")
	rangeStart.CreateAttr("w:id", idStr)
	insertWrapperBefore(firstEl, rangeStart)

	rangeEnd := oxml.OxmlElement("w:commentRangeEnd")
	rangeEnd.CreateAttr("w:id", idStr)
	insertWrapperAfter(lastEl, rangeEnd)

	refRun := buildCommentReferenceRun(lastEl, idStr)
	insertWrapperAfter(rangeEnd, refRun)

	commentsRoot.AddChild(buildCommentElement(idStr, author, initials, date, text))

	return id
}

// buildCommentReferenceRun builds the reference-bearing run that follows a
// comment's range-end marker, inheriting styleSource's properties (last_run,
// per §4.3) and carrying the CommentReference character style plus the
// w:commentReference element itself. styleSource is the w:ins/w:del wrapper
// (or bare run) bounding the edited region; its rPr lives one level deeper,
// inside the wrapper's own w:r child, so it must be resolved before looking
// up rPr.
func buildCommentReferenceRun(styleSource *etree.Element, idStr string) *etree.Element {
	run := oxml.OxmlElement("w:r")

	var rPr *etree.Element
	if sourceRPr := findChild(sourceRun(styleSource), "w", "rPr"); sourceRPr != nil {
		rPr = sourceRPr.Copy()
	} else {
		rPr = oxml.OxmlElement("w:rPr")
	}
	rStyle := oxml.OxmlElement("w:rStyle")
	rStyle.CreateAttr("w:val", "CommentReference")
	rPr.AddChild(rStyle)
	run.AddChild(rPr)

	ref := oxml.OxmlElement("w:commentReference")
	ref.CreateAttr("w:id", idStr)
	run.AddChild(ref)

	return run
}

// sourceRun resolves the w:r a style lookup should read from. If el is an
// w:ins/w:del wrapper, its rPr-bearing run is one level deeper, inside its
// own w:r child; if el is already a bare run, it is returned unchanged.
func sourceRun(el *etree.Element) *etree.Element {
	if el == nil {
		return nil
	}
	if el.Space == "w" && el.Tag == "r" {
		return el
	}
	if inner := findChild(el, "w", "r"); inner != nil {
		return inner
	}
	return el
}

// buildCommentElement builds the <w:comment> entry appended to the comments
// part: one <w:p><w:r><w:t>...</w:t></w:r></w:p> per line of text (split on
// "\n"), matching how Word itself lays out multi-line comment bodies.
func buildCommentElement(idStr, author, initials, date, text string) *etree.Element {
	comment := oxml.OxmlElement("w:comment")
	comment.CreateAttr("w:id", idStr)
	comment.CreateAttr("w:author", author)
	comment.CreateAttr("w:initials", initials)
	comment.CreateAttr("w:date", date)

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		p := oxml.OxmlElement("w:p")
		r := oxml.OxmlElement("w:r")
		t := oxml.OxmlElement("w:t")
		t.SetText(line)
		ensurePreserveSpace(t)
		r.AddChild(t)
		p.AddChild(r)
		comment.AddChild(p)
	}

	return comment
}
