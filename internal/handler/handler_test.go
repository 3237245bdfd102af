package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vortex/docx-api/internal/handler"
	"github.com/vortex/docx-api/internal/service"
	"github.com/vortex/docx-api/pkg/redline"
)

// mockService implements service.RedlineService for testing handlers.
type mockService struct {
	inspectFn func([]byte) (*service.DocumentInfo, error)
	applyFn   func([]byte, []redline.Edit, string, time.Time) ([]byte, *redline.Report, error)
}

func (m *mockService) Inspect(data []byte) (*service.DocumentInfo, error) {
	if m.inspectFn != nil {
		return m.inspectFn(data)
	}
	return &service.DocumentInfo{PartsCount: 5, HasStyles: true}, nil
}

func (m *mockService) ApplyEdits(data []byte, edits []redline.Edit, author string, now time.Time) ([]byte, *redline.Report, error) {
	if m.applyFn != nil {
		return m.applyFn(data, edits, author, now)
	}
	return data, &redline.Report{Applied: len(edits)}, nil
}

func newMultipartRequest(t *testing.T, url string, fileData []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "test.docx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(fileData); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", body["status"])
	}
}

func TestInspectHandler_Success(t *testing.T) {
	t.Parallel()
	svc := &mockService{}
	h := handler.NewRedlineHandler(svc)

	req := newMultipartRequest(t, "/api/v1/documents/inspect", []byte("fake-docx"), nil)
	rec := httptest.NewRecorder()

	h.Inspect(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var info service.DocumentInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.PartsCount != 5 {
		t.Errorf("expected 5 parts, got %d", info.PartsCount)
	}
}

func TestInspectHandler_NoFile(t *testing.T) {
	t.Parallel()
	svc := &mockService{}
	h := handler.NewRedlineHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/inspect", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	rec := httptest.NewRecorder()

	h.Inspect(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestApplyEditsHandler_ReturnsDocxAndReport(t *testing.T) {
	t.Parallel()
	testData := []byte("fake-docx-bytes")
	svc := &mockService{
		applyFn: func(data []byte, edits []redline.Edit, author string, now time.Time) ([]byte, *redline.Report, error) {
			if author != "Jane Reviewer" {
				t.Errorf("expected author Jane Reviewer, got %s", author)
			}
			if len(edits) != 1 || edits[0].Operation != redline.OpInsert {
				t.Errorf("expected one INSERT edit, got %+v", edits)
			}
			return data, &redline.Report{Applied: 1}, nil
		},
	}
	h := handler.NewRedlineHandler(svc)

	editsJSON := `{"author":"Jane Reviewer","edits":[{"operation":"INSERT","target":"hello","new_text":" world"}]}`
	req := newMultipartRequest(t, "/api/v1/documents/redline", testData, map[string]string{"edits": editsJSON})
	rec := httptest.NewRecorder()

	h.ApplyEdits(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	ct := rec.Header().Get("Content-Type")
	expected := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	if ct != expected {
		t.Errorf("expected content-type %s, got %s", expected, ct)
	}

	if rec.Header().Get("X-Redline-Report") == "" {
		t.Error("expected X-Redline-Report header to be set")
	}

	body, _ := io.ReadAll(rec.Body)
	if !bytes.Equal(body, testData) {
		t.Error("response body doesn't match input")
	}
}

func TestApplyEditsHandler_NoFile(t *testing.T) {
	t.Parallel()
	svc := &mockService{}
	h := handler.NewRedlineHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/redline", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	rec := httptest.NewRecorder()

	h.ApplyEdits(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
