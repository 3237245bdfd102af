package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/vortex/docx-api/internal/service"
	"github.com/vortex/docx-api/pkg/redline"
	"github.com/vortex/docx-api/pkg/response"
)

// RedlineHandler exposes HTTP endpoints over the redline engine.
type RedlineHandler struct {
	svc service.RedlineService
}

// NewRedlineHandler creates a handler backed by the given service.
func NewRedlineHandler(svc service.RedlineService) *RedlineHandler {
	return &RedlineHandler{svc: svc}
}

// wireEdit is the JSON shape of one Edit in an apply_edits request body,
// matching the wire-level schema: {operation, target, new_text?, comment?,
// occurrence}.
type wireEdit struct {
	Operation  string `json:"operation"`
	Target     string `json:"target"`
	NewText    string `json:"new_text"`
	Comment    string `json:"comment"`
	Occurrence int    `json:"occurrence"`
}

// applyEditsRequest is the JSON shape of the "edits" form field.
type applyEditsRequest struct {
	Author string     `json:"author"`
	Edits  []wireEdit `json:"edits"`
}

// Inspect handles POST /api/v1/documents/inspect.
// Accepts a multipart form with a "file" field containing a .docx.
// Returns JSON metadata about the document.
func (h *RedlineHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	data, err := readUploadedFile(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.svc.Inspect(data)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, info)
}

// ApplyEdits handles POST /api/v1/documents/redline.
// Accepts a multipart form with a "file" field (the .docx) and an "edits"
// field (JSON: {author, edits: [...]}). Applies the edits as tracked
// changes and returns the resulting .docx, with a summary of what was
// applied or skipped in the X-Redline-Report response header.
func (h *RedlineHandler) ApplyEdits(w http.ResponseWriter, r *http.Request) {
	data, err := readUploadedFile(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := readEditsField(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	author := req.Author
	if author == "" {
		author = "Redline Bot"
	}

	edits := make([]redline.Edit, 0, len(req.Edits))
	for _, we := range req.Edits {
		edits = append(edits, redline.Edit{
			Operation:  redline.Operation(we.Operation),
			Target:     we.Target,
			NewText:    we.NewText,
			Comment:    we.Comment,
			Occurrence: we.Occurrence,
		})
	}

	output, report, err := h.svc.ApplyEdits(data, edits, author, time.Now())
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	reportJSON, _ := json.Marshal(report)
	w.Header().Set("X-Redline-Report", string(reportJSON))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="redlined.docx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(output)
}

// readUploadedFile extracts the file bytes from a multipart upload.
// It looks for a form field named "file".
func readUploadedFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(100 << 20); err != nil { // up to 100 MB held in memory, the rest on disk
		return nil, err
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// readEditsField extracts and decodes the "edits" form field.
func readEditsField(r *http.Request) (*applyEditsRequest, error) {
	raw := r.FormValue("edits")
	var req applyEditsRequest
	if raw == "" {
		return &req, nil
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, err
	}
	return &req, nil
}
