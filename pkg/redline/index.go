package redline

import (
	"strings"

	"github.com/beevik/etree"
)

// entry is one flat-index record: a text-bearing run, its text node, and
// the run's absolute position in the flat text.
//
// Per spec, only text nodes contribute characters to the flat text — tab,
// break, and field-code children of a run are skipped entirely here; they
// never occupy flat-text offsets and are left untouched by every mutation
// in this package.
type entry struct {
	run      *etree.Element
	textNode *etree.Element
	start    int
	length   int
}

// flatIndex is the document-wide text ↔ tree mapping built once per job.
type flatIndex struct {
	entries []entry
	text    string
}

// buildIndex performs the depth-first traversal of body described in §4.2:
// paragraphs (including table-cell paragraphs, row-major, flattened) in
// document order, runs within each paragraph (including hyperlink-wrapped
// runs) in document order, text nodes within each run in order. A virtual
// "\n\n" separator is inserted between consecutive paragraphs without
// being owned by any entry.
func buildIndex(body *etree.Element) *flatIndex {
	paragraphs := collectParagraphs(body)

	var sb strings.Builder
	var entries []entry
	cursor := 0

	for i, p := range paragraphs {
		if i > 0 {
			sb.WriteString("\n\n")
			cursor += 2
		}
		for _, run := range collectRuns(p) {
			for _, child := range run.ChildElements() {
				if child.Space != "w" || child.Tag != "t" {
					continue
				}
				txt := child.Text()
				entries = append(entries, entry{
					run:      run,
					textNode: child,
					start:    cursor,
					length:   len(txt),
				})
				sb.WriteString(txt)
				cursor += len(txt)
			}
		}
	}

	return &flatIndex{entries: entries, text: sb.String()}
}

// collectParagraphs walks container's children in document order, collecting
// <w:p> elements directly and recursing into <w:tbl>/<w:tr>/<w:tc> so that
// table-cell paragraphs are flattened in row-major order. No separator
// token is associated with cell boundaries — consistent with how buildIndex
// joins the returned slice (open question in spec.md §9, resolved here).
func collectParagraphs(container *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range container.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "p":
			out = append(out, child)
		case "tbl":
			for _, tr := range child.ChildElements() {
				if tr.Space != "w" || tr.Tag != "tr" {
					continue
				}
				for _, tc := range tr.ChildElements() {
					if tc.Space != "w" || tc.Tag != "tc" {
						continue
					}
					out = append(out, collectParagraphs(tc)...)
				}
			}
		}
	}
	return out
}

// collectRuns returns the direct-child <w:r> elements of p in document
// order, plus any <w:r> nested one level inside a <w:hyperlink> child.
func collectRuns(p *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range p.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "r":
			out = append(out, child)
		case "hyperlink":
			for _, grandchild := range child.ChildElements() {
				if grandchild.Space == "w" && grandchild.Tag == "r" {
					out = append(out, grandchild)
				}
			}
		}
	}
	return out
}

// findOccurrences returns the byte-offset starting positions of every
// non-overlapping, left-to-right, case-sensitive literal occurrence of sub
// in text.
func findOccurrences(text, sub string) []int {
	var positions []int
	start := 0
	subLen := len(sub)
	for {
		idx := strings.Index(text[start:], sub)
		if idx < 0 {
			break
		}
		positions = append(positions, start+idx)
		start += idx + subLen
	}
	return positions
}

// runSlice is one run's contribution to a resolved flat-text range: the
// [LocalStart, LocalEnd) part of Run's text node that the range covers.
// splitRange turns each slice into a run holding exactly that text.
type runSlice struct {
	Run        *etree.Element
	TextNode   *etree.Element
	LocalStart int
	LocalEnd   int
}

// resolveSlices returns the run-slices intersecting [start, end), in
// document order. A slice's local bounds are relative to its own entry;
// flat-text positions that fall in a virtual paragraph gap (or outside any
// run) contribute no slice, matching the "skip the virtual gap" rule.
func (idx *flatIndex) resolveSlices(start, end int) []runSlice {
	var out []runSlice
	for _, e := range idx.entries {
		eEnd := e.start + e.length
		if e.start >= end || eEnd <= start {
			continue
		}
		localStart := start - e.start
		if localStart < 0 {
			localStart = 0
		}
		localEnd := end - e.start
		if localEnd > e.length {
			localEnd = e.length
		}
		out = append(out, runSlice{Run: e.run, TextNode: e.textNode, LocalStart: localStart, LocalEnd: localEnd})
	}
	return out
}

// splitRange normalizes each of the given slices so it covers a whole run:
// splitting off any prefix before LocalStart and any suffix after LocalEnd
// into sibling runs that stay outside the edit. Returns the runs (now
// exactly the covered text) in document order.
func splitRange(slices []runSlice) []*etree.Element {
	runs := make([]*etree.Element, 0, len(slices))
	for _, s := range slices {
		run := splitRunForSlice(s)
		runs = append(runs, run)
	}
	return runs
}

// splitRunForSlice isolates the [LocalStart, LocalEnd) substring of s into
// its own run, splitting off prefix/suffix runs as needed, and returns that
// run.
func splitRunForSlice(s runSlice) *etree.Element {
	run, textNode := s.Run, s.TextNode
	localStart, localEnd := s.LocalStart, s.LocalEnd

	if localStart > 0 {
		_, right := splitRunAtOffset(run, textNode, localStart)
		run = right
		textNode = findChild(run, "w", "t")
		localEnd -= localStart
		localStart = 0
	}
	if localEnd < len(textNode.Text()) {
		left, _ := splitRunAtOffset(run, textNode, localEnd)
		run = left
	}
	return run
}

// splitRunAtOffset implements split_run_at (§4.2): at offset 0 or the full
// text length it is a no-op; otherwise it clones run (including a deep copy
// of its properties element), puts the prefix in the original and the
// suffix in the clone, and inserts the clone as run's immediate next
// sibling. xml:space="preserve" is reapplied to both sides as needed.
//
// Assumes one <w:t> child per run, which covers every run this engine
// itself ever creates or splits; a pre-existing run with multiple text
// nodes only ever has its first text node addressed, matching how buildIndex
// emits one entry per text node rather than per run.
func splitRunAtOffset(run, textNode *etree.Element, offset int) (left, right *etree.Element) {
	text := textNode.Text()
	if offset <= 0 {
		return nil, run
	}
	if offset >= len(text) {
		return run, nil
	}

	leftText, rightText := text[:offset], text[offset:]

	clone := run.Copy()
	cloneTextNode := findChild(clone, "w", "t")
	cloneTextNode.SetText(rightText)
	ensurePreserveSpace(cloneTextNode)

	textNode.SetText(leftText)
	ensurePreserveSpace(textNode)

	parent := run.Parent()
	idx := childIndex(parent, run)
	parent.InsertChildAt(idx+1, clone)

	return run, clone
}

// ensurePreserveSpace sets xml:space="preserve" on el when its text has
// leading/trailing whitespace (or is empty), and removes it otherwise.
func ensurePreserveSpace(el *etree.Element) {
	text := el.Text()
	if text == "" || len(strings.TrimSpace(text)) < len(text) {
		el.CreateAttr("xml:space", "preserve")
	} else {
		el.RemoveAttr("xml:space")
	}
}

// entryContaining returns the entry whose range contains pos, or nil.
func (idx *flatIndex) entryContaining(pos int) *entry {
	for i := range idx.entries {
		e := &idx.entries[i]
		if pos >= e.start && pos < e.start+e.length {
			return e
		}
	}
	return nil
}

// entryStartingAt returns the entry beginning exactly at pos, or nil.
func (idx *flatIndex) entryStartingAt(pos int) *entry {
	for i := range idx.entries {
		e := &idx.entries[i]
		if e.start == pos {
			return e
		}
	}
	return nil
}

// entryEndingAt returns the entry ending exactly at pos, or nil.
func (idx *flatIndex) entryEndingAt(pos int) *entry {
	for i := range idx.entries {
		e := &idx.entries[i]
		if e.start+e.length == pos {
			return e
		}
	}
	return nil
}

// resolveInsertionBoundary ensures flat position p is a run boundary —
// splitting the run that spans it, if p falls strictly inside one — and
// returns the run ending exactly at p (nil at document start) and the run
// starting exactly at p (nil at document end, or when p falls in a
// paragraph gap with no run immediately following).
func (idx *flatIndex) resolveInsertionBoundary(p int) (preceding, following *etree.Element) {
	if e := idx.entryStartingAt(p); e != nil {
		following = e.run
	}
	if e := idx.entryEndingAt(p); e != nil {
		preceding = e.run
		return
	}
	if e := idx.entryContaining(p); e != nil {
		left, right := splitRunAtOffset(e.run, e.textNode, p-e.start)
		preceding, following = left, right
		return
	}
	// p is in a paragraph gap, at document start, or at document end:
	// fall back to the nearest runs by flat position.
	for i := range idx.entries {
		e := &idx.entries[i]
		if e.start+e.length <= p {
			preceding = e.run
		}
		if following == nil && e.start >= p {
			following = e.run
		}
	}
	return
}

// childIndex returns the index of child within parent's children, or -1.
func childIndex(parent, child *etree.Element) int {
	for i, c := range parent.Child {
		if el, ok := c.(*etree.Element); ok && el == child {
			return i
		}
	}
	return -1
}
