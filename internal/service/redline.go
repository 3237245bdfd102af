// Package service wires the redline engine and the package inspector
// behind a small interface the HTTP handlers depend on.
package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/vortex/docx-api/internal/packaging"
	"github.com/vortex/docx-api/pkg/redline"
)

// DocumentInfo holds metadata extracted after inspecting a document.
type DocumentInfo struct {
	// Core properties
	Title       string `json:"title,omitempty"`
	Creator     string `json:"creator,omitempty"`
	Description string `json:"description,omitempty"`

	// App properties
	Application string `json:"application,omitempty"`

	// Structure counts
	PartsCount   int      `json:"parts_count"`
	HeaderCount  int      `json:"header_count"`
	FooterCount  int      `json:"footer_count"`
	MediaFiles   []string `json:"media_files,omitempty"`
	HasStyles    bool     `json:"has_styles"`
	HasNumbering bool     `json:"has_numbering"`
	HasComments  bool     `json:"has_comments"`
	HasFootnotes bool     `json:"has_footnotes"`
	HasEndnotes  bool     `json:"has_endnotes"`
}

// RedlineService defines the interface the HTTP handlers depend on.
type RedlineService interface {
	// Inspect parses a .docx from raw bytes and returns document metadata,
	// the same role the teacher's packaging Open endpoint plays.
	Inspect(data []byte) (*DocumentInfo, error)

	// ApplyEdits opens data, applies edits as tracked changes authored by
	// author at timestamp now, and returns the resulting .docx bytes plus
	// the redline.Report describing what was applied or skipped.
	ApplyEdits(data []byte, edits []redline.Edit, author string, now time.Time) ([]byte, *redline.Report, error)
}

type redlineService struct{}

// NewRedlineService creates a new RedlineService instance.
func NewRedlineService() RedlineService {
	return &redlineService{}
}

func (s *redlineService) Inspect(data []byte) (*DocumentInfo, error) {
	reader := bytes.NewReader(data)
	doc, err := packaging.OpenReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("service: inspect document: %w", err)
	}
	return extractInfo(doc), nil
}

func (s *redlineService) ApplyEdits(data []byte, edits []redline.Edit, author string, now time.Time) ([]byte, *redline.Report, error) {
	doc, err := redline.OpenDocument(data)
	if err != nil {
		return nil, nil, fmt.Errorf("service: open document: %w", err)
	}

	report, err := redline.ApplyEdits(doc, edits, author, now)
	if err != nil {
		return nil, report, fmt.Errorf("service: apply edits: %w", err)
	}

	out, err := redline.SaveDocument(doc)
	if err != nil {
		return nil, report, fmt.Errorf("service: save document: %w", err)
	}

	return out, report, nil
}

// extractInfo populates a DocumentInfo from an opened packaging.Document.
func extractInfo(doc *packaging.Document) *DocumentInfo {
	info := &DocumentInfo{
		HeaderCount:  len(doc.Headers),
		FooterCount:  len(doc.Footers),
		HasStyles:    doc.Styles != nil,
		HasNumbering: doc.Numbering != nil,
		HasComments:  doc.Comments != nil,
		HasFootnotes: doc.Footnotes != nil,
		HasEndnotes:  doc.Endnotes != nil,
	}

	if doc.CoreProps != nil {
		info.Title = doc.CoreProps.Title
		info.Creator = doc.CoreProps.Creator
		info.Description = doc.CoreProps.Description
	}

	if doc.AppProps != nil {
		info.Application = doc.AppProps.Application
	}

	mediaFiles := make([]string, 0, len(doc.Media))
	for name := range doc.Media {
		mediaFiles = append(mediaFiles, name)
	}
	info.MediaFiles = mediaFiles

	count := 1 // document.xml always present
	if doc.Styles != nil {
		count++
	}
	if doc.Settings != nil {
		count++
	}
	if doc.Fonts != nil {
		count++
	}
	if doc.Numbering != nil {
		count++
	}
	if doc.Footnotes != nil {
		count++
	}
	if doc.Endnotes != nil {
		count++
	}
	if doc.Comments != nil {
		count++
	}
	if len(doc.Theme) > 0 {
		count++
	}
	if len(doc.WebSettings) > 0 {
		count++
	}
	count += len(doc.Headers) + len(doc.Footers) + len(doc.Media) + len(doc.UnknownParts)
	info.PartsCount = count

	return info
}
