package redline

import "testing"

func TestBuildIndex_FlatTextWithParagraphGap(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello world"))+para(run("Second paragraph")))
	idx := buildIndex(doc.Body())

	want := "Hello world\n\nSecond paragraph"
	if idx.text != want {
		t.Fatalf("flat text = %q, want %q", idx.text, want)
	}
	if len(idx.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(idx.entries))
	}
	if idx.entries[1].start != len("Hello world\n\n") {
		t.Errorf("second entry start = %d, want %d", idx.entries[1].start, len("Hello world\n\n"))
	}
}

func TestBuildIndex_TableCellsFlattenedNoSeparator(t *testing.T) {
	tbl := `<w:tbl><w:tr><w:tc>` + para(run("cell one")) + `</w:tc>` +
		`<w:tc>` + para(run("cell two")) + `</w:tc></w:tr></w:tbl>`
	doc := newTestDoc(t, tbl)
	idx := buildIndex(doc.Body())

	want := "cell one\n\ncell two"
	if idx.text != want {
		t.Fatalf("flat text = %q, want %q", idx.text, want)
	}
}

func TestBuildIndex_HyperlinkRunsIncluded(t *testing.T) {
	doc := newTestDoc(t, para(`<w:hyperlink>`+run("linked text")+`</w:hyperlink>`))
	idx := buildIndex(doc.Body())

	if idx.text != "linked text" {
		t.Fatalf("flat text = %q, want %q", idx.text, "linked text")
	}
}

func TestBuildIndex_OnlyTextNodesContributeCharacters(t *testing.T) {
	doc := newTestDoc(t, para(`<w:r><w:tab/><w:t>after tab</w:t></w:r>`))
	idx := buildIndex(doc.Body())

	if idx.text != "after tab" {
		t.Fatalf("flat text = %q, want %q (tab must not occupy offsets)", idx.text, "after tab")
	}
}

func TestFindOccurrences(t *testing.T) {
	got := findOccurrences("0\n\n0", "0")
	want := []int{0, 3}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("findOccurrences = %v, want %v", got, want)
	}
}

func TestSplitRunAtOffset_MiddleSplit(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello world")))
	idx := buildIndex(doc.Body())
	e := idx.entries[0]

	left, right := splitRunAtOffset(e.run, e.textNode, 5)
	if left == nil || right == nil {
		t.Fatal("expected both halves to be non-nil for a strict-interior split")
	}
	leftText := findChild(left, "w", "t").Text()
	rightText := findChild(right, "w", "t").Text()
	if leftText != "Hello" || rightText != " world" {
		t.Fatalf("split = %q / %q, want %q / %q", leftText, rightText, "Hello", " world")
	}
	if right.Parent() != left.Parent() {
		t.Error("split halves must be siblings")
	}
}

func TestSplitRunAtOffset_BoundaryIsNoOp(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello")))
	idx := buildIndex(doc.Body())
	e := idx.entries[0]

	left, right := splitRunAtOffset(e.run, e.textNode, 0)
	if left != nil || right != e.run {
		t.Error("offset 0 must be a no-op returning (nil, run)")
	}

	left, right = splitRunAtOffset(e.run, e.textNode, len(e.textNode.Text()))
	if right != nil || left != e.run {
		t.Error("offset == length must be a no-op returning (run, nil)")
	}
}

func TestResolveSlicesAndSplitRange_SpansTwoRuns(t *testing.T) {
	doc := newTestDoc(t, para(run("Hello"), run(" world")))
	idx := buildIndex(doc.Body())

	slices := idx.resolveSlices(3, 8) // "lo wo"
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}

	runs := splitRange(slices)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs after split, got %d", len(runs))
	}
	firstText := findChild(runs[0], "w", "t").Text()
	secondText := findChild(runs[1], "w", "t").Text()
	if firstText+secondText != "lo wo" {
		t.Errorf("split runs = %q + %q, want concatenation %q", firstText, secondText, "lo wo")
	}
}
