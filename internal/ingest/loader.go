package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/adreport/internal/models"
	"github.com/AngelCh415/adreport/internal/utils"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Loader turns a source (local path or http(s) URL) into a RawTable.
type Loader struct {
	c     HTTPClient
	bo    utils.Backoff
	sheet string
	log   *slog.Logger
}

// NewLoader builds a Loader. sheet selects the worksheet of xlsx sources; empty
// means the first sheet.
func NewLoader(c HTTPClient, retries int, sheet string, log *slog.Logger) *Loader {
	return &Loader{c: c, bo: utils.NewBackoff(100*time.Millisecond, retries), sheet: sheet, log: log}
}

func (l *Loader) Load(ctx context.Context, source string) (models.RawTable, error) {
	format, err := FormatOf(source)
	if err != nil {
		return models.RawTable{}, err
	}

	var data []byte
	if isRemote(source) {
		data, err = fetchWithRetry(ctx, l.c, l.bo, source)
	} else {
		data, err = readFile(source)
	}
	if err != nil {
		return models.RawTable{}, err
	}
	l.log.Debug("source loaded", slog.String("source", source), slog.String("format", format), slog.Int("bytes", len(data)))
	return Decode(bytes.NewReader(data), format, l.sheet)
}

// FormatOf picks the decoder from the extension of a path or URL.
func FormatOf(source string) (string, error) {
	p := source
	if isRemote(source) {
		if u, err := url.Parse(source); err == nil {
			p = u.Path
		}
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, source)
}

// Decode reads one in-memory document of the given format.
func Decode(r io.Reader, format, sheet string) (models.RawTable, error) {
	switch format {
	case FormatXLSX:
		return decodeXLSX(r, sheet)
	case FormatCSV:
		return decodeCSV(r)
	}
	return models.RawTable{}, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
}

func decodeXLSX(r io.Reader, sheet string) (models.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return models.RawTable{}, nil
		}
		sheet = sheets[0]
	}
	if !lo.Contains(sheets, sheet) {
		return models.RawTable{}, fmt.Errorf("%w: sheet %q", models.ErrSourceNotFound, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return splitHeader(rows), nil
}

func decodeCSV(r io.Reader) (models.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return splitHeader(rows), nil
}

func splitHeader(rows [][]string) models.RawTable {
	if len(rows) == 0 {
		return models.RawTable{}
	}
	return models.RawTable{Headers: rows[0], Rows: rows[1:]}
}

func readFile(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrSourceNotFound, p)
		}
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxDocumentBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentBytes)
	}
	return b, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
