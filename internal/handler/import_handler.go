package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/cache"
	"github.com/GTDGit/retail_api/internal/importer"
	"github.com/GTDGit/retail_api/internal/middleware"
	"github.com/GTDGit/retail_api/internal/service"
	"github.com/GTDGit/retail_api/internal/spreadsheet"
	"github.com/GTDGit/retail_api/internal/utils"
)

// ProductImporter is the import service used by ImportHandler.
type ProductImporter interface {
	ImportProducts(ctx context.Context, req *service.ImportRequest) (*importer.ImportOutcome, error)
	LastSummary(ctx context.Context, companyID string) (*cache.ImportSummary, error)
}

// ImportHandler handles bulk product imports.
type ImportHandler struct {
	imports   ProductImporter
	maxUpload int64
}

// NewImportHandler creates a new ImportHandler. Uploads larger than
// maxUploadBytes are refused.
func NewImportHandler(imports ProductImporter, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{imports: imports, maxUpload: maxUploadBytes}
}

type jsonImportRequest struct {
	Rows []importer.Row `json:"rows"`
}

// ImportProducts handles POST /v1/imports/products
// Accepts a multipart "file" field (.xlsx or .csv) or a JSON body {"rows": [...]}.
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	req := &service.ImportRequest{
		CompanyID: c.GetString(middleware.CtxCompanyID),
		UserID:    c.GetInt(middleware.CtxUserID),
	}

	var ok bool
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		ok = h.readUpload(c, req)
	} else {
		ok = h.readJSON(c, req)
	}
	if !ok {
		return
	}

	outcome, err := h.imports.ImportProducts(c.Request.Context(), req)
	if err != nil {
		h.writeImportError(c, err)
		return
	}

	utils.Success(c, 200, "Import completed", outcome)
}

func (h *ImportHandler) readUpload(c *gin.Context, req *service.ImportRequest) bool {
	// Leave room for the multipart envelope around the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(c, 413, "FILE_TOO_LARGE", fmt.Sprintf("File exceeds %d MB", h.maxUpload>>20))
			return false
		}
		utils.Error(c, 400, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return false
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		utils.Error(c, 413, "FILE_TOO_LARGE", fmt.Sprintf("File exceeds %d MB", h.maxUpload>>20))
		return false
	}

	format, err := spreadsheet.FormatOf(header.Filename)
	if err != nil {
		utils.Error(c, 400, "UNSUPPORTED_FORMAT", "Only .xlsx and .csv files are supported")
		return false
	}

	raw, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		utils.Error(c, 400, "INVALID_FILE", "Failed to read uploaded file")
		return false
	}
	if int64(len(raw)) > h.maxUpload {
		utils.Error(c, 413, "FILE_TOO_LARGE", fmt.Sprintf("File exceeds %d MB", h.maxUpload>>20))
		return false
	}

	sheet, err := spreadsheet.Parse(format, bytes.NewReader(raw))
	if err != nil {
		log.Debug().Err(err).Str("filename", header.Filename).Msg("Failed to parse import file")
		utils.Error(c, 400, "INVALID_FILE", fmt.Sprintf("Failed to parse file: %v", err))
		return false
	}

	req.Source = string(format)
	req.Filename = header.Filename
	req.ContentType = header.Header.Get("Content-Type")
	req.Raw = raw
	req.Rows = sheet.Rows
	req.Lines = sheet.Lines
	return true
}

func (h *ImportHandler) readJSON(c *gin.Context, req *service.ImportRequest) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	var body jsonImportRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(c, 413, "BODY_TOO_LARGE", fmt.Sprintf("Body exceeds %d MB", h.maxUpload>>20))
			return false
		}
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return false
	}

	req.Source = service.SourceJSON
	req.Rows = body.Rows
	return true
}

func (h *ImportHandler) writeImportError(c *gin.Context, err error) {
	var provisionErr *importer.CategoryProvisionError
	var writeErr *importer.BulkWriteError

	switch {
	case errors.Is(err, importer.ErrEmptyInput):
		utils.Error(c, 400, "EMPTY_IMPORT", "The file contains no product rows")
	case errors.Is(err, utils.ErrTooManyRows):
		utils.Error(c, 413, "TOO_MANY_ROWS", err.Error())
	case errors.Is(err, importer.ErrMissingCompany):
		utils.Error(c, 401, "UNAUTHORIZED", "Missing company")
	case errors.Is(err, utils.ErrImportInProgress):
		utils.Error(c, 409, "IMPORT_IN_PROGRESS", "Another import is already running for this company")
	case errors.Is(err, context.DeadlineExceeded):
		utils.Error(c, 504, "IMPORT_TIMEOUT", "Import took too long")
	case errors.As(err, &provisionErr):
		utils.ErrorWithDetails(c, 500, "CATEGORY_PROVISION_FAILED",
			fmt.Sprintf("Failed to create category %q", provisionErr.Name), gin.H{"category": provisionErr.Name})
	case errors.As(err, &writeErr):
		utils.Error(c, 500, "BULK_INSERT_FAILED", "Failed to save products")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Import failed")
	}
}

// GetTemplate handles GET /v1/imports/products/template?format=xlsx|csv|json
func (h *ImportHandler) GetTemplate(c *gin.Context) {
	switch c.DefaultQuery("format", "json") {
	case "csv":
		c.Header("Content-Type", spreadsheet.CSVContentType)
		c.Header("Content-Disposition", "attachment; filename="+spreadsheet.TemplateBaseName+".csv")
		if err := spreadsheet.WriteCSVTemplate(c.Writer); err != nil {
			log.Error().Err(err).Msg("Failed to write CSV template")
		}
	case "xlsx":
		var buf bytes.Buffer
		if err := spreadsheet.WriteXLSXTemplate(&buf); err != nil {
			log.Error().Err(err).Msg("Failed to build XLSX template")
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to build template")
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+spreadsheet.TemplateBaseName+".xlsx")
		c.Data(200, spreadsheet.XLSXContentType, buf.Bytes())
	default:
		utils.Success(c, 200, "Import template", gin.H{
			"sheet":   spreadsheet.ProductSheet,
			"columns": importer.Columns(),
		})
	}
}

// GetLastImport handles GET /v1/imports/products/last
func (h *ImportHandler) GetLastImport(c *gin.Context) {
	summary, err := h.imports.LastSummary(c.Request.Context(), c.GetString(middleware.CtxCompanyID))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read last import summary")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve last import")
		return
	}
	if summary == nil {
		utils.Error(c, 404, "NOT_FOUND", "No recent import")
		return
	}
	utils.Success(c, 200, "Last import retrieved", summary)
}
