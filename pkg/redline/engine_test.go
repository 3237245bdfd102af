package redline

import (
	"testing"
	"time"

	"github.com/vortex/docx-api/pkg/opc"
)

func fixedTime() time.Time {
	return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
}

func TestApplyEdits_Delete(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello cruel world")))

	report, err := ApplyEdits(doc, []Edit{
		{Operation: OpDelete, Target: "cruel "},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if report.Applied != 1 || len(report.Skipped) != 0 {
		t.Fatalf("report = %+v, want 1 applied, 0 skipped", report)
	}

	dels := findAllByTag(doc.Body(), "w", "del")
	if len(dels) != 1 {
		t.Fatalf("expected 1 w:del, got %d", len(dels))
	}
	delRun := findChild(dels[0], "w", "r")
	if delRun == nil {
		t.Fatal("w:del must wrap a w:r")
	}
	delText := findChild(delRun, "w", "delText")
	if delText == nil || delText.Text() != "cruel " {
		t.Errorf("delText = %v, want %q", delText, "cruel ")
	}
	if findChild(delRun, "w", "t") != nil {
		t.Error("deleted run must not keep a w:t sibling of w:delText")
	}
}

func TestApplyEdits_Insert(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello world")))

	report, err := ApplyEdits(doc, []Edit{
		{Operation: OpInsert, Target: "Hello", NewText: " there"},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if report.Applied != 1 {
		t.Fatalf("report = %+v, want 1 applied", report)
	}

	ins := findAllByTag(doc.Body(), "w", "ins")
	if len(ins) != 1 {
		t.Fatalf("expected 1 w:ins, got %d", len(ins))
	}
	insRun := findChild(ins[0], "w", "r")
	if insRun == nil {
		t.Fatal("w:ins must wrap a w:r")
	}
	insText := findChild(insRun, "w", "t")
	if insText == nil || insText.Text() != " there" {
		t.Errorf("inserted text = %v, want %q", insText, " there")
	}
}

func TestApplyEdits_ModifyWithComment(t *testing.T) {
	doc := newTestDoc(t, para(run("This contract is subject to governing law.")))

	report, err := ApplyEdits(doc, []Edit{
		{Operation: OpModify, Target: "governing law", NewText: "laws of New York", Comment: "Client prefers NY"},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if report.Applied != 1 {
		t.Fatalf("report = %+v, want 1 applied", report)
	}

	dels := findAllByTag(doc.Body(), "w", "del")
	ins := findAllByTag(doc.Body(), "w", "ins")
	if len(dels) != 1 || len(ins) != 1 {
		t.Fatalf("expected 1 del and 1 ins, got %d/%d", len(dels), len(ins))
	}

	starts := findAllByTag(doc.Body(), "w", "commentRangeStart")
	ends := findAllByTag(doc.Body(), "w", "commentRangeEnd")
	refs := findAllByTag(doc.Body(), "w", "commentReference")
	if len(starts) != 1 || len(ends) != 1 || len(refs) != 1 {
		t.Fatalf("expected matched comment markers, got starts=%d ends=%d refs=%d", len(starts), len(ends), len(refs))
	}

	if doc.commentsPart == nil {
		t.Fatal("expected comments part to be created")
	}
	comments := findAllByTag(doc.commentsPart.Element(), "w", "comment")
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment entry, got %d", len(comments))
	}
	if attrVal(comments[0], "w", "id") != attrVal(starts[0], "w", "id") {
		t.Error("comment id must match the range-start marker id")
	}

	if _, err := doc.mainPart.Rels().GetByRelType(opc.RTComments); err != nil {
		t.Error("expected a main->comments relationship to exist")
	}
}

func TestApplyEdits_CommentReferenceInheritsLastRunFormatting(t *testing.T) {
	doc := newTestDoc(t, para(boldRun("governing law")))

	_, err := ApplyEdits(doc, []Edit{
		{Operation: OpModify, Target: "governing law", NewText: "laws of New York", Comment: "Client prefers NY"},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}

	refs := findAllByTag(doc.Body(), "w", "commentReference")
	if len(refs) != 1 {
		t.Fatalf("expected 1 w:commentReference, got %d", len(refs))
	}
	refRun := refs[0].Parent()
	if refRun == nil || refRun.Space != "w" || refRun.Tag != "r" {
		t.Fatalf("commentReference must be wrapped in a w:r, got %v", refRun)
	}
	rPr := findChild(refRun, "w", "rPr")
	if rPr == nil {
		t.Fatal("comment-reference run has no w:rPr")
	}
	if findChild(rPr, "w", "b") == nil {
		t.Error("comment-reference run must inherit bold from the edited run's properties")
	}
	rStyle := findChild(rPr, "w", "rStyle")
	if rStyle == nil || attrVal(rStyle, "w", "val") != "CommentReference" {
		t.Error("comment-reference run must still carry the CommentReference style override")
	}
}

func TestApplyEdits_OccurrenceDisambiguation(t *testing.T) {
	doc := newTestDoc(t, para(run("0"))+para(run("0")))

	report, err := ApplyEdits(doc, []Edit{
		{Operation: OpModify, Target: "0", NewText: "1", Occurrence: 1},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if report.Applied != 1 {
		t.Fatalf("report = %+v, want 1 applied", report)
	}

	paras := doc.Body().ChildElements()
	firstDel := findAllByTag(paras[0], "w", "del")
	secondDel := findAllByTag(paras[1], "w", "del")
	if len(firstDel) != 0 {
		t.Error("first paragraph's \"0\" must be untouched")
	}
	if len(secondDel) != 1 {
		t.Error("second paragraph's \"0\" must be the one modified")
	}
}

func TestApplyEdits_PrefixInsertionInheritsFollowingRunStyle(t *testing.T) {
	doc := newTestDoc(t, para(boldRun("Important")))

	_, err := ApplyEdits(doc, []Edit{
		{Operation: OpInsert, Target: "", NewText: "Very "},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}

	ins := findAllByTag(doc.Body(), "w", "ins")
	if len(ins) != 1 {
		t.Fatalf("expected 1 w:ins, got %d", len(ins))
	}
	insRun := findChild(ins[0], "w", "r")
	rPr := findChild(insRun, "w", "rPr")
	if rPr == nil || findChild(rPr, "w", "b") == nil {
		t.Error("inserted run must inherit the bold property of the following run")
	}
}

func TestApplyEdits_OverlapConflictSkipsLaterEdit(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello cruel world")))

	report, err := ApplyEdits(doc, []Edit{
		{Operation: OpDelete, Target: "cruel world"},
		{Operation: OpDelete, Target: "world"},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if report.Applied != 1 {
		t.Fatalf("report.Applied = %d, want 1", report.Applied)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("report.Skipped = %v, want 1 entry", report.Skipped)
	}
	if _, ok := report.Skipped[0].Err.(*OverlapConflictError); !ok {
		t.Errorf("skip reason = %T, want *OverlapConflictError", report.Skipped[0].Err)
	}
}

func TestApplyEdits_TargetNotFoundIsSkippedNotFatal(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello world")))

	report, err := ApplyEdits(doc, []Edit{
		{Operation: OpDelete, Target: "nonexistent"},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if report.Applied != 0 || len(report.Skipped) != 1 {
		t.Fatalf("report = %+v, want 0 applied, 1 skipped", report)
	}
	if _, ok := report.Skipped[0].Err.(*TargetNotFoundError); !ok {
		t.Errorf("skip reason = %T, want *TargetNotFoundError", report.Skipped[0].Err)
	}
}

func TestApplyEdits_GapSpanningDeleteIsOverlapConflict(t *testing.T) {
	doc := newTestDoc(t, para(run("end of para"))+para(run("start of next")))

	report, err := ApplyEdits(doc, []Edit{
		{Operation: OpDelete, Target: "para\n\nstart"},
	}, "Tester", fixedTime())
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if report.Applied != 0 || len(report.Skipped) != 1 {
		t.Fatalf("report = %+v, want 0 applied, 1 skipped", report)
	}
	if _, ok := report.Skipped[0].Err.(*OverlapConflictError); !ok {
		t.Errorf("skip reason = %T, want *OverlapConflictError", report.Skipped[0].Err)
	}
}
