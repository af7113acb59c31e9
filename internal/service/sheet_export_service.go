package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/inspection-api/internal/models"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
	"github.com/noah-isme/inspection-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ParseExportFormat validates a user supplied format; empty means PDF.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatPDF:
		return ExportFormatPDF, nil
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	default:
		return "", appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"), "field", "format", "value", raw)
	}
}

// ExportResult is a rendered document ready to be streamed.
type ExportResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Payload     []byte `json:"payload"`
}

// SheetExportInput carries a sheet with the reference data needed to print it.
type SheetExportInput struct {
	Sheet    models.InspectionSheet
	Object   models.Object
	Executor models.User
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type sheetDocumentRenderer interface {
	RenderSheet(doc export.SheetDocument) ([]byte, error)
}

var defectHeaders = []string{"No", "Location ID", "Location", "Description", "Severity"}

// SheetExportService renders the inspection act (PDF) and the defect register
// (CSV). Approved sheets never change, so their documents are cached per
// sheet version.
type SheetExportService struct {
	csv      csvRenderer
	pdf      sheetDocumentRenderer
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSheetExportService constructs the service. nil renderers use the
// defaults from pkg/export.
func NewSheetExportService(cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger, csv csvRenderer, pdf sheetDocumentRenderer) *SheetExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &SheetExportService{csv: csv, pdf: pdf, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

// Render produces the document for in.Sheet in the requested format.
func (s *SheetExportService) Render(ctx context.Context, in SheetExportInput, format ExportFormat) (*ExportResult, error) {
	cacheable := in.Sheet.Status == models.SheetStatusApproved
	key := exportCacheKey(in.Sheet, format)
	if cacheable {
		var cached ExportResult
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	start := time.Now()
	var (
		payload []byte
		err     error
		result  ExportResult
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(defectDataset(in.Sheet))
		result.ContentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.RenderSheet(sheetDocument(in))
		result.ContentType = "application/pdf"
	default:
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"), "field", "format", "value", string(format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.metrics.ObserveExport(string(format), time.Since(start))

	result.Payload = payload
	result.Filename = fmt.Sprintf("inspection_%s_%s.%s", sanitizeFilename(in.Sheet.ObjectID), in.Sheet.IssuedDate.String(), format)

	if cacheable {
		_ = s.cache.Set(ctx, key, result, s.cacheTTL)
	}
	return &result, nil
}

func exportCacheKey(sheet models.InspectionSheet, format ExportFormat) string {
	return fmt.Sprintf("export:%s:v%d:%s", sheet.ID, sheet.Version, format)
}

func defectDataset(sheet models.InspectionSheet) export.Dataset {
	rows := make([]map[string]string, 0, len(sheet.Defects))
	for i, d := range sheet.Defects {
		rows = append(rows, map[string]string{
			"No":          strconv.Itoa(i + 1),
			"Location ID": d.LocationID,
			"Location":    d.LocationName,
			"Description": d.Description,
			"Severity":    severityLabel(d.Severity),
		})
	}
	return export.Dataset{Headers: defectHeaders, Rows: rows}
}

func sheetDocument(in SheetExportInput) export.SheetDocument {
	sheet := in.Sheet
	notes := sheet.MasterNotes
	if notes == "" {
		notes = "-"
	}
	return export.SheetDocument{
		Title: "Inspection sheet",
		Fields: []export.Field{
			{Label: "Object", Value: in.Object.Name},
			{Label: "Executor", Value: in.Executor.Name},
			{Label: "Status", Value: string(sheet.Status)},
			{Label: "Issued", Value: sheet.IssuedDate.String()},
			{Label: "Completed", Value: dateOrDash(sheet.CompletedDate)},
			{Label: "Accepted", Value: dateOrDash(sheet.MasterAcceptedDate)},
			{Label: "Notes", Value: notes},
		},
		Table: defectDataset(sheet),
		Signatures: []export.Field{
			{Label: "Worker", Value: stringOrDash(sheet.WorkerSignature)},
			{Label: "Master", Value: stringOrDash(sheet.MasterSignature)},
		},
	}
}

func severityLabel(s *models.Severity) string {
	if s == nil {
		return "unspecified"
	}
	return string(*s)
}

func dateOrDash(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
