package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/adreport/internal/ingest"
	"github.com/AngelCh415/adreport/internal/models"
	"github.com/AngelCh415/adreport/internal/pipeline"
	"github.com/AngelCh415/adreport/internal/utils"
)

const maxUploadBytes = 32 << 20

// NewRouter exposes the report pipeline. defaultSource is served by GET /report;
// sheet is used for uploaded workbooks unless the request names one.
func NewRouter(log *slog.Logger, svc *pipeline.Service, defaultSource, sheet string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/report", func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Run(r.Context(), defaultSource)
		if err != nil {
			writeError(w, log, r, err)
			return
		}
		writeJSON(w, res)
	})

	mux.Post("/report", func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = formatFromContentType(r.Header.Get("Content-Type"))
		}
		sh := r.URL.Query().Get("sheet")
		if sh == "" {
			sh = sheet
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(body) > maxUploadBytes {
			http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		raw, err := ingest.Decode(bytes.NewReader(body), format, sh)
		if err != nil {
			writeError(w, log, r, err)
			return
		}
		res, err := svc.Build(r.Context(), "upload", raw)
		if err != nil {
			writeError(w, log, r, err)
			return
		}
		writeJSON(w, res)
	})

	return mux
}

func formatFromContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	switch strings.TrimSpace(ct) {
	case "text/csv":
		return ingest.FormatCSV
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ingest.FormatXLSX
	}
	return ""
}

type errorBody struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func writeError(w http.ResponseWriter, log *slog.Logger, r *http.Request, err error) {
	var schema *models.SchemaError
	var cell *models.CellError
	code := http.StatusInternalServerError
	body := errorBody{Error: err.Error()}
	switch {
	case errors.Is(err, models.ErrSourceNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrUnsupportedFormat):
		code = http.StatusUnsupportedMediaType
	case errors.As(err, &schema):
		code = http.StatusUnprocessableEntity
		body.Missing = schema.Missing
	case errors.As(err, &cell):
		code = http.StatusUnprocessableEntity
	}
	if code == http.StatusInternalServerError {
		log.Error("report failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
