package redline

import (
	"fmt"
	"sort"
	"time"

	"github.com/beevik/etree"

	"github.com/vortex/docx-api/pkg/oxml"
)

// Operation names an Edit's kind, matching the wire-level schema in §6.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpDelete Operation = "DELETE"
	OpModify Operation = "MODIFY"
)

// Edit is one semantic change to apply, as described in §3/§6. Target holds
// the anchor text for INSERT and the exact text to change for DELETE/MODIFY.
// NewText is ignored for DELETE. Comment, when non-empty, attaches a review
// comment spanning the edited region.
type Edit struct {
	Operation  Operation
	Target     string
	NewText    string
	Comment    string
	Occurrence int
}

// SkippedEdit records an edit that could not be resolved or conflicted with
// an earlier edit — non-fatal, reported back to the caller (§7).
type SkippedEdit struct {
	Index int
	Edit  Edit
	Err   error
}

// Report summarizes one ApplyEdits call.
type Report struct {
	Applied int
	Skipped []SkippedEdit
}

// resolvedEdit is an Edit together with its absolute flat-text range,
// computed once against the pristine index before any mutation.
type resolvedEdit struct {
	edit  Edit
	index int
	start int
	end   int
}

// ApplyEdits resolves every edit against doc's current flat text, drops
// per-edit failures and mutual overlaps into the Report, and applies the
// remainder back-to-front so that earlier mutations never invalidate a
// still-pending edit's resolved offsets. Revision ids are allocated in input
// order (§5) even though wrappers are inserted in back-to-front order.
func ApplyEdits(doc *Doc, edits []Edit, author string, now time.Time) (*Report, error) {
	idx := buildIndex(doc.Body())
	report := &Report{}

	resolved := make([]resolvedEdit, 0, len(edits))
	for i, e := range edits {
		start, end, err := resolveRange(idx, e, i)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedEdit{Index: i, Edit: e, Err: err})
			continue
		}
		resolved = append(resolved, resolvedEdit{edit: e, index: i, start: start, end: end})
	}

	accepted := make([]resolvedEdit, 0, len(resolved))
	for _, r := range resolved {
		conflict := false
		for _, a := range accepted {
			if rangesOverlap(r.start, r.end, a.start, a.end) {
				conflict = true
				break
			}
		}
		if conflict {
			report.Skipped = append(report.Skipped, SkippedEdit{
				Index: r.index,
				Edit:  r.edit,
				Err:   NewOverlapConflictError(r.start, r.end),
			})
			continue
		}
		accepted = append(accepted, r)
	}

	revisionID := maxRevisionID(doc.Body())
	idsByIndex := make(map[int]int, len(accepted))
	byIndexAsc := append([]resolvedEdit(nil), accepted...)
	sort.SliceStable(byIndexAsc, func(i, j int) bool { return byIndexAsc[i].index < byIndexAsc[j].index })
	for _, r := range byIndexAsc {
		revisionID++
		idsByIndex[r.index] = revisionID
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].start != accepted[j].start {
			return accepted[i].start > accepted[j].start
		}
		return accepted[i].end > accepted[j].end
	})

	dateStr := now.UTC().Format("2006-01-02T15:04:05Z")

	for _, r := range accepted {
		id := idsByIndex[r.index]
		var first, last *etree.Element
		var err error

		switch r.edit.Operation {
		case OpDelete:
			first, last, err = applyDelete(idx, r, id, author, dateStr)
		case OpInsert:
			first, last, err = applyInsert(doc, idx, r, id, author, dateStr)
		case OpModify:
			first, last, err = applyModify(idx, r, id, author, dateStr)
		default:
			err = fmt.Errorf("redline: unknown operation %q", r.edit.Operation)
		}
		if err != nil {
			return report, err
		}

		if r.edit.Comment != "" && first != nil && last != nil {
			attachComment(doc, first, last, r.edit.Comment, author, initialsFor(author), dateStr)
		}

		report.Applied++
	}

	return report, nil
}

// resolveRange implements edit normalization (§4.4): resolving target/anchor
// text plus occurrence index to an absolute flat range. editIndex is the
// edit's position in the caller's input slice, needed for the "empty anchor
// valid only as the first edit" rule.
func resolveRange(idx *flatIndex, e Edit, editIndex int) (start, end int, err error) {
	switch e.Operation {
	case OpDelete, OpModify:
		if e.Target == "" {
			return 0, 0, NewEmptyTargetError()
		}
		occs := findOccurrences(idx.text, e.Target)
		if e.Occurrence < 0 || e.Occurrence >= len(occs) {
			return 0, 0, NewTargetNotFoundError(e.Target, e.Occurrence)
		}
		start = occs[e.Occurrence]
		end = start + len(e.Target)
		if spansGap(idx, start, end) {
			return 0, 0, NewOverlapConflictError(start, end)
		}
		return start, end, nil

	case OpInsert:
		if e.Target == "" {
			if editIndex != 0 {
				return 0, 0, NewEmptyTargetError()
			}
			return 0, 0, nil
		}
		occs := findOccurrences(idx.text, e.Target)
		if e.Occurrence < 0 || e.Occurrence >= len(occs) {
			return 0, 0, NewAnchorNotFoundError(e.Target, e.Occurrence)
		}
		p := occs[e.Occurrence] + len(e.Target)
		return p, p, nil

	default:
		return 0, 0, fmt.Errorf("redline: unknown operation %q", e.Operation)
	}
}

// spansGap reports whether [start,end) covers fewer characters than the
// run-slices intersecting it account for — meaning it crosses a virtual
// paragraph-gap separator rather than staying within runs.
func spansGap(idx *flatIndex, start, end int) bool {
	covered := 0
	for _, s := range idx.resolveSlices(start, end) {
		covered += s.LocalEnd - s.LocalStart
	}
	return covered < end-start
}

// rangesOverlap reports whether [s1,e1) and [s2,e2) share any position.
// Touching (zero-width at a shared boundary) does not count as overlap.
func rangesOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// applyDelete wraps the runs spanning [r.start, r.end) in w:del, retagging
// their text nodes to w:delText. Returns the first and last wrapper, for
// optional comment anchoring.
func applyDelete(idx *flatIndex, r resolvedEdit, id int, author, date string) (first, last *etree.Element, err error) {
	slices := idx.resolveSlices(r.start, r.end)
	if len(slices) == 0 {
		return nil, nil, nil
	}
	runs := splitRange(slices)
	wrappers := wrapRunsInDel(runs, id, author, date)
	return wrappers[0], wrappers[len(wrappers)-1], nil
}

// applyModify deletes [r.start, r.end) then inserts r.edit.NewText
// immediately before the deleted region's first wrapper, sharing id with
// the deletion (§4.4).
func applyModify(idx *flatIndex, r resolvedEdit, id int, author, date string) (first, last *etree.Element, err error) {
	slices := idx.resolveSlices(r.start, r.end)
	if len(slices) == 0 {
		return nil, nil, nil
	}
	runs := splitRange(slices)

	precedingRun := siblingElement(runs[0], -1)
	followingRun := siblingElement(runs[len(runs)-1], 1)

	delWrappers := wrapRunsInDel(runs, id, author, date)
	firstDel := delWrappers[0]

	styleSource := styleInheritanceSource(r.edit.NewText, precedingRun, followingRun)
	newRun := buildInsertRun(r.edit.NewText, styleSource)
	insWrapper := wrapDetachedRun(newRun, "w:ins", id, author, date)
	insertWrapperBefore(firstDel, insWrapper)

	return insWrapper, delWrappers[len(delWrappers)-1], nil
}

// applyInsert splits the run spanning r.start (if needed) and inserts a
// fresh w:ins-wrapped run immediately after the preceding run (or before the
// following run, at document start).
func applyInsert(doc *Doc, idx *flatIndex, r resolvedEdit, id int, author, date string) (first, last *etree.Element, err error) {
	precedingRun, followingRun := idx.resolveInsertionBoundary(r.start)

	styleSource := styleInheritanceSource(r.edit.NewText, precedingRun, followingRun)
	newRun := buildInsertRun(r.edit.NewText, styleSource)
	insWrapper := wrapDetachedRun(newRun, "w:ins", id, author, date)

	switch {
	case precedingRun != nil:
		insertWrapperAfter(precedingRun, insWrapper)
	case followingRun != nil:
		insertWrapperBefore(followingRun, insWrapper)
	default:
		// Empty document body: fall back to appending directly.
		doc.Body().AddChild(insWrapper)
	}

	return insWrapper, insWrapper, nil
}

// wrapDetachedRun wraps a run that has no parent yet (freshly built by
// buildInsertRun) in a bare <tag w:id w:author w:date> element — the caller
// places the returned wrapper into the tree afterward.
func wrapDetachedRun(run *etree.Element, tag string, id int, author, date string) *etree.Element {
	wrapper := oxml.OxmlElement(tag)
	wrapper.CreateAttr("w:id", fmt.Sprintf("%d", id))
	wrapper.CreateAttr("w:author", author)
	wrapper.CreateAttr("w:date", date)
	wrapper.AddChild(run)
	return wrapper
}

// initialsFor derives comment initials from an author name: the upper-cased
// first letter of each space-separated word, capped at 3 letters. A
// single-word author yields one letter; an empty or all-space author yields
// "NA".
func initialsFor(author string) string {
	var out []byte
	word := true
	for i := 0; i < len(author) && len(out) < 3; i++ {
		c := author[i]
		if c == ' ' {
			word = true
			continue
		}
		if word {
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			out = append(out, c)
			word = false
		}
	}
	if len(out) == 0 {
		return "NA"
	}
	return string(out)
}
