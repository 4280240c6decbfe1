package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/dmitrijs2005/gophdrop/internal/logging"
	"github.com/dmitrijs2005/gophdrop/internal/server/metrics"
	"github.com/dmitrijs2005/gophdrop/internal/server/storage"
)

const (
	msgNoFile      = "No file provided"
	msgMissingPath = "Missing path"
	msgTooLarge    = "File too large"
	msgInvalidJSON = "Invalid JSON body"

	// parts above this are spooled to disk by the multipart reader
	multipartMemory = 8 << 20
	// room for multipart boundaries and part headers on top of the file
	multipartOverhead = 64 << 10
	maxDeleteBody     = 1 << 20
)

type uploadResponse struct {
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl,omitempty"`
}

type deleteRequest struct {
	Path string `json:"path"`
}

type deletedObject struct {
	Name string `json:"name"`
}

type deleteResponse struct {
	Data []deletedObject `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	store         Store
	logger        logging.Logger
	maxUploadSize int64
	metrics       *metrics.Metrics
	now           func() time.Time
}

func newHandler(store Store, logger logging.Logger, opts Options) *handler {
	return &handler{
		store:         store,
		logger:        logger.With("module", "httpapi"),
		maxUploadSize: opts.MaxUploadSize,
		metrics:       opts.Metrics,
		now:           time.Now,
	}
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Upload stores the "file" part as <unix millis>-<file name>.
func (h *handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusBadRequest, msgTooLarge)
		case errors.Is(err, http.ErrNotMultipart):
			writeError(w, http.StatusBadRequest, msgNoFile)
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(common.UploadFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		writeError(w, http.StatusBadRequest, msgTooLarge)
		return
	}

	name := fmt.Sprintf("%d-%s", h.now().UnixMilli(), header.Filename)
	contentType := header.Header.Get("Content-Type")

	err = h.store.Put(r.Context(), name, file, header.Size, contentType)
	h.observeStore("put", err)
	if err != nil {
		h.logger.Error(r.Context(), "upload failed", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, storage.Message(err))
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveUpload(header.Size)
	}

	h.logger.Info(r.Context(), "file stored", "name", name, "size", header.Size, "content_type", contentType)
	writeJSON(w, http.StatusOK, uploadResponse{Path: name, PublicURL: h.store.PublicURL(name)})
}

// DeleteFile removes the object named by the JSON body's path.
func (h *handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDeleteBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, msgMissingPath)
		return
	}

	err := h.store.Delete(r.Context(), req.Path)
	h.observeStore("delete", err)
	if err != nil {
		h.logger.Error(r.Context(), "delete failed", "path", req.Path, "error", err)
		writeError(w, http.StatusInternalServerError, storage.Message(err))
		return
	}

	h.logger.Info(r.Context(), "file deleted", "path", req.Path)
	writeJSON(w, http.StatusOK, deleteResponse{Data: []deletedObject{{Name: req.Path}}})
}

func (h *handler) observeStore(op string, err error) {
	if h.metrics != nil {
		h.metrics.ObserveStore(op, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
