package handlers

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/csvio"
	"github.com/diewo77/school-billing/internal/services"
)

// maxImportBytes caps uploaded roster files.
const maxImportBytes = 5 << 20

type StudentHandler struct {
	svc *services.StudentService
	log *zap.Logger
}

func NewStudentHandler(svc *services.StudentService, log *zap.Logger) *StudentHandler {
	return &StudentHandler{svc: svc, log: log}
}

func (h *StudentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/students", h.List)
	mux.HandleFunc("POST /api/students", h.Create)
	mux.HandleFunc("POST /api/students/{id}/status", h.SetStatus)
	mux.HandleFunc("GET /api/students/export.csv", h.ExportCSV)
	mux.HandleFunc("POST /api/students/import", h.Import)
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, students)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.StudentInput
	if !decode(w, r, &in) {
		return
	}
	st, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, st)
}

func (h *StudentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IsActive *bool `json:"isActive"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.IsActive == nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"isActive": "required"})
		return
	}
	st, err := h.svc.SetActive(r.Context(), r.PathValue("id"), *in.IsActive)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *StudentHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	students, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var buf bytes.Buffer
	if err := csvio.WriteStudents(&buf, students); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.Attachment(w, "text/csv; charset=utf-8", "students.csv", buf.Bytes())
}

// Import accepts a CSV roster (text/csv) or a JSON array of students.
func (h *StudentHandler) Import(w http.ResponseWriter, r *http.Request) {
	var rows []services.StudentInput
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "text/csv" {
		students, err := csvio.ReadStudents(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"file": err.Error()})
			return
		}
		for _, s := range students {
			rows = append(rows, services.InputFromStudent(s))
		}
	} else if !decode(w, r, &rows) {
		return
	}
	n, err := h.svc.Import(r.Context(), rows)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int{"imported": n})
}
