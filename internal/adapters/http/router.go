// Package httpadapter exposes the file naming service over HTTP: queue
// allocation, file upload, synchronous batch processing and statistics.
package httpadapter

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kirillkom/docnamer/internal/config"
	"github.com/kirillkom/docnamer/internal/core/domain"
	"github.com/kirillkom/docnamer/internal/core/ports"
	"github.com/kirillkom/docnamer/internal/observability/metrics"
)

const serviceName = "docnamer-api"

type Router struct {
	ingestor  ports.FileIngestor
	processor ports.FileProcessor
	files     ports.FileReader
	queues    ports.QueueService

	cfg           config.Config
	serverMetrics *metrics.HTTPServerMetrics
}

func NewRouter(
	ingestor ports.FileIngestor,
	processor ports.FileProcessor,
	files ports.FileReader,
	queues ports.QueueService,
	cfg config.Config,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingestor:      ingestor,
		processor:     processor,
		files:         files,
		queues:        queues,
		cfg:           cfg,
		serverMetrics: serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", rt.healthz)
	r.Get("/openapi.json", rt.openAPIDocument)
	if rt.serverMetrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.serverMetrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/queues", rt.createQueue)
		r.Get("/queues/{position}/stats", rt.queueStats)
		r.Get("/queues/totals", rt.queueTotals)
		r.Post("/files", rt.uploadFiles)
		r.Post("/files/process", rt.processBatch)
		r.Get("/files/{file_id}", rt.getFileByID)
	})

	var handler http.Handler = r
	if rt.serverMetrics != nil {
		handler = rt.serverMetrics.Middleware(serviceName, handler)
	}
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.serverMetrics, serviceName)
	handler = backpressureMiddlewareWithMetrics(handler, rt.cfg.APIMaxInFlight, 50*time.Millisecond, rt.serverMetrics, serviceName)
	handler = recoverMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createQueue(w http.ResponseWriter, r *http.Request) {
	position, err := rt.queues.AllocatePosition(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"position": position})
}

func (rt *Router) queueStats(w http.ResponseWriter, r *http.Request) {
	position, err := parsePosition(chi.URLParam(r, "position"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "queue position must be a positive integer"})
		return
	}

	stats, err := rt.queues.Stats(r.Context(), position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) queueTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := rt.queues.Totals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// uploadFiles accepts one or more multipart "file" parts bound to an
// existing queue position. Each part becomes its own pending file record;
// one bad sibling fails the whole request before any processing starts.
func (rt *Router) uploadFiles(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(rt.cfg.MaxUploadMiB) << 20
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	position, err := parsePosition(r.FormValue("queue_position"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "form field 'queue_position' must be a positive integer"})
		return
	}

	var parts []*multipart.FileHeader
	if r.MultipartForm != nil {
		parts = r.MultipartForm.File["file"]
	}
	if len(parts) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}

	records := make([]*domain.FileRecord, 0, len(parts))
	for _, header := range parts {
		rec, err := rt.uploadOne(r, position, header)
		if err != nil {
			writeError(w, err)
			return
		}
		records = append(records, rec)
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordBatchSize(serviceName, len(records))
	}
	if len(records) == 1 {
		writeJSON(w, http.StatusAccepted, records[0])
		return
	}
	writeJSON(w, http.StatusAccepted, records)
}

func (rt *Router) uploadOne(r *http.Request, position int64, header *multipart.FileHeader) (*domain.FileRecord, error) {
	file, err := header.Open()
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open multipart file", err)
	}
	defer file.Close()

	rec, err := rt.ingestor.Upload(r.Context(), position, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		return nil, err
	}
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordUpload(serviceName, rec.InputType)
	}
	return rec, nil
}

// processBatch runs extraction and naming for a set of already uploaded
// files and waits for the outcome. The asynchronous path through the message
// queue stays the default; this endpoint serves callers that need the
// synthesized names in the response.
func (rt *Router) processBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QueuePosition int64    `json:"queue_position"`
		FileIDs       []string `json:"file_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.FileIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_ids is required"})
		return
	}

	result, err := rt.processor.ProcessBatch(r.Context(), req.QueuePosition, req.FileIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		for _, item := range result.Items {
			if item.Success {
				rec, err := rt.files.GetByID(r.Context(), item.FileID)
				if err == nil {
					rt.serverMetrics.RecordSynthesizedName(serviceName, string(rec.DocumentType))
				}
			}
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getFileByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "file_id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file id is required"})
		return
	}

	rec, err := rt.files.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func parsePosition(raw string) (int64, error) {
	position, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse queue position", err)
	}
	if position <= 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse queue position",
			fmt.Errorf("position %d is not positive", position))
	}
	return position, nil
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
