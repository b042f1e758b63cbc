package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jovote/models"
	"jovote/pkg/blobstore"
	"jovote/pkg/journal"
	"jovote/pkg/security"
)

const (
	journalFilePDF  = journal.FilePDF
	journalFileDocx = journal.FileDocx

	maxManuscriptSize = 50 * 1024 * 1024
	blobCallTimeout   = 30 * time.Second
)

var allowedManuscriptTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// mapJournalErr translates the domain error taxonomy onto HTTP statuses.
func mapJournalErr(c *gin.Context, err error, fallback string) {
	var ve *journal.ValidationError
	switch {
	case errors.Is(err, journal.ErrNotFound):
		respondErr(c, http.StatusNotFound, "journal not found", nil)
	case errors.Is(err, journal.ErrInvalidArgument):
		respondErr(c, http.StatusBadRequest, "invalid argument", nil)
	case errors.Is(err, journal.ErrInvalidTransition):
		respondErr(c, http.StatusBadRequest, journal.ErrInvalidTransition.Error(), nil)
	case errors.Is(err, journal.ErrDuplicateDOI):
		respondErr(c, http.StatusConflict, journal.ErrDuplicateDOI.Error(), nil)
	case errors.As(err, &ve):
		respondErr(c, http.StatusBadRequest, ve.Error(), nil)
	default:
		respondErr(c, http.StatusInternalServerError, fallback, err)
	}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := journal.ParseID(c.Param("id"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "invalid journal ID", nil)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func listCurrentYearHandler(c *gin.Context) {
	page, err := journals.ListCurrentYear(c.Request.Context(),
		c.Query("search"), queryInt(c, "quarter", 0),
		queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		mapJournalErr(c, err, "error fetching published journals")
		return
	}
	respondOK(c, http.StatusOK, "published journals retrieved successfully", gin.H{
		"journals":      page.Items,
		"currentPage":   page.Page,
		"totalPages":    page.TotalPages,
		"totalJournals": page.Total,
	})
}

func listArchivedHandler(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "invalid year provided", nil)
		return
	}
	page, err := journals.ListArchivedByYear(c.Request.Context(), year,
		queryInt(c, "quarter", 0), queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		if errors.Is(err, journal.ErrInvalidArgument) {
			respondErr(c, http.StatusBadRequest, "invalid year provided", nil)
			return
		}
		mapJournalErr(c, err, "error fetching archived journals")
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("archived journals for %d retrieved successfully", year), gin.H{
		"journals":      page.Items,
		"currentPage":   page.Page,
		"totalPages":    page.TotalPages,
		"year":          year,
		"totalJournals": page.Total,
	})
}

func listByVolumeHandler(c *gin.Context) {
	year, yerr := strconv.Atoi(c.Param("year"))
	quarter, qerr := strconv.Atoi(c.Param("quarter"))
	if yerr != nil || qerr != nil {
		respondErr(c, http.StatusBadRequest, "invalid year or quarter provided", nil)
		return
	}
	page, err := journals.ListByVolume(c.Request.Context(), year, quarter,
		queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		if errors.Is(err, journal.ErrInvalidArgument) {
			respondErr(c, http.StatusBadRequest, "invalid year or quarter provided", nil)
			return
		}
		mapJournalErr(c, err, "error fetching journals by volume")
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("journals for %d Quarter %d retrieved successfully", year, quarter), gin.H{
		"journals":      page.Items,
		"currentPage":   page.Page,
		"totalPages":    page.TotalPages,
		"volume":        gin.H{"year": year, "quarter": quarter},
		"totalJournals": page.Total,
	})
}

func getJournalHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	j, err := journals.GetByID(c.Request.Context(), id)
	if err != nil {
		mapJournalErr(c, err, "error fetching published journal")
		return
	}
	respondOK(c, http.StatusOK, "published journal retrieved successfully", gin.H{"journal": j})
}

func searchCriteriaFromQuery(c *gin.Context) journal.SearchCriteria {
	crit := journal.SearchCriteria{
		Search:   c.Query("search"),
		Year:     queryInt(c, "year", 0),
		Quarter:  queryInt(c, "quarter", 0),
		Author:   c.Query("author"),
		Status:   c.Query("status"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 0),
	}
	if kw := c.Query("keywords"); kw != "" {
		crit.Keywords = strings.Split(kw, ",")
	}
	return crit
}

func advancedSearchHandler(c *gin.Context) {
	page, err := journals.AdvancedSearch(c.Request.Context(), searchCriteriaFromQuery(c))
	if err != nil {
		mapJournalErr(c, err, "error performing search")
		return
	}
	respondOK(c, http.StatusOK, "search completed", gin.H{
		"journals":   page.Items,
		"total":      page.Total,
		"page":       page.Page,
		"totalPages": page.TotalPages,
	})
}

func adminListHandler(c *gin.Context) {
	page, err := journals.AdminList(c.Request.Context(), searchCriteriaFromQuery(c))
	if err != nil {
		mapJournalErr(c, err, "error fetching journals")
		return
	}
	respondOK(c, http.StatusOK, "journals retrieved successfully", gin.H{
		"journals":    page.Items,
		"currentPage": page.Page,
		"totalPages":  page.TotalPages,
		"total":       page.Total,
	})
}

func pendingReviewHandler(c *gin.Context) {
	p, err := journals.ListPendingReview(c.Request.Context(), c.Query("status"),
		queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		mapJournalErr(c, err, "error fetching pending journals")
		return
	}
	respondOK(c, http.StatusOK, "pending journals retrieved successfully", gin.H{
		"journals":      p.Items,
		"currentPage":   p.Page,
		"totalPages":    p.TotalPages,
		"totalJournals": p.Total,
		"statusCounts":  p.StatusCounts,
	})
}

func statsHandler(c *gin.Context) {
	st, err := journals.GetStats(c.Request.Context(), queryInt(c, "year", 0))
	if err != nil {
		mapJournalErr(c, err, "error fetching statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": st})
}

// saveManuscript validates and stores one uploaded file locally, then
// best-effort pushes it to the blob store. Returns the blob URL (may be
// empty) and the local path.
func saveManuscript(c *gin.Context, file *multipart.FileHeader) (blobURL, localPath string, err error) {
	ct := file.Header.Get("Content-Type")
	if _, ok := allowedManuscriptTypes[ct]; !ok {
		monitor.Record(security.EventUploadViolation, c.ClientIP(), c.Request.Method, c.FullPath(), c.Request.UserAgent(), ct)
		return "", "", &journal.ValidationError{Field: "file", Reason: "only PDF, DOC and DOCX files are allowed"}
	}
	if file.Size > maxManuscriptSize {
		monitor.Record(security.EventUploadViolation, c.ClientIP(), c.Request.Method, c.FullPath(), c.Request.UserAgent(), "file too large")
		return "", "", &journal.ValidationError{Field: "file", Reason: "file exceeds the 50MB limit"}
	}
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
	localPath = filepath.Join(uploadBaseDir(), "published-journals", name)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", "", err
	}
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		return "", "", err
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), blobCallTimeout)
	defer cancel()
	url, err := blobs.Upload(ctx, localPath, "")
	if err != nil {
		// Keep the local copy and carry on; the record stores the path.
		logUpstreamWarning("blob upload", err)
		return "", localPath, nil
	}
	return url, localPath, nil
}

func logUpstreamWarning(op string, err error) {
	fmt.Fprintf(gin.DefaultErrorWriter, "warning: %s failed: %v\n", op, err)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func submitJournalHandler(c *gin.Context) {
	file, err := c.FormFile("manuscript")
	if err != nil {
		respondErr(c, http.StatusBadRequest, "no file uploaded", nil)
		return
	}
	title := c.PostForm("title")
	abstract := c.PostForm("abstract")
	authors := splitList(c.PostForm("authors"))
	if title == "" || abstract == "" || len(authors) == 0 {
		respondErr(c, http.StatusBadRequest, "title, abstract, and authors are required", nil)
		return
	}

	blobURL, localPath, err := saveManuscript(c, file)
	if err != nil {
		mapJournalErr(c, err, "error storing manuscript")
		return
	}

	submittedBy := c.PostForm("submitted_by")
	if submittedBy == "" {
		if u, ok := c.Get("username"); ok {
			submittedBy, _ = u.(string)
		}
	}
	params := journal.CreateParams{
		Title:           title,
		Abstract:        abstract,
		Authors:         authors,
		Keywords:        splitList(c.PostForm("keywords")),
		SubmittedBy:     submittedBy,
		ContentFilePath: localPath,
		FileSize:        file.Size,
		FileType:        file.Header.Get("Content-Type"),
	}
	if blobURL != "" {
		if strings.HasSuffix(strings.ToLower(file.Filename), ".docx") || strings.HasSuffix(strings.ToLower(file.Filename), ".doc") {
			params.DocxURL = blobURL
		} else {
			params.PdfURL = blobURL
		}
	}
	j, err := journals.Create(c.Request.Context(), params)
	if err != nil {
		mapJournalErr(c, err, "error submitting journal for publication")
		return
	}
	// Local copy is only the pre-upload fallback; drop it once the blob holds the file.
	if blobURL != "" {
		if rmErr := os.Remove(localPath); rmErr != nil {
			logUpstreamWarning("local cleanup", rmErr)
		} else {
			db.Model(j).Update("content_file_path", "")
		}
	}
	respondOK(c, http.StatusCreated, "journal submitted for publication successfully", gin.H{"journal": j})
}

func adminUploadHandler(c *gin.Context) {
	title := c.PostForm("title")
	abstract := c.PostForm("abstract")
	authors := splitList(c.PostForm("authors"))
	if title == "" || abstract == "" || len(authors) == 0 {
		respondErr(c, http.StatusBadRequest, "title, abstract, and authors are required", nil)
		return
	}
	pdfFile, pdfErr := c.FormFile("pdfFile")
	docxFile, docxErr := c.FormFile("docxFile")
	if pdfErr != nil && docxErr != nil {
		respondErr(c, http.StatusBadRequest, "please upload at least one file (PDF or DOCX)", nil)
		return
	}

	params := journal.CreateParams{
		Title:         title,
		Abstract:      abstract,
		Authors:       authors,
		Keywords:      splitList(c.PostForm("keywords")),
		SubmittedBy:   c.PostForm("submitted_by"),
		Status:        c.DefaultPostForm("status", models.StatusPublished),
		VolumeYear:    atoiOrZero(c.PostForm("volume_year")),
		VolumeQuarter: atoiOrZero(c.PostForm("volume_quarter")),
		DOI:           c.PostForm("doi"),
	}
	if pdfErr == nil {
		url, localPath, err := saveManuscript(c, pdfFile)
		if err != nil {
			mapJournalErr(c, err, "failed to store PDF file")
			return
		}
		params.PdfURL = url
		params.ContentFilePath = localPath
		params.FileSize = pdfFile.Size
		params.FileType = pdfFile.Header.Get("Content-Type")
	}
	if docxErr == nil {
		url, localPath, err := saveManuscript(c, docxFile)
		if err != nil {
			mapJournalErr(c, err, "failed to store DOCX file")
			return
		}
		params.DocxURL = url
		if params.ContentFilePath == "" {
			params.ContentFilePath = localPath
			params.FileSize = docxFile.Size
			params.FileType = docxFile.Header.Get("Content-Type")
		}
	}

	j, err := journals.Create(c.Request.Context(), params)
	if err != nil {
		mapJournalErr(c, err, "error uploading journal")
		return
	}
	respondOK(c, http.StatusCreated, "journal uploaded successfully", gin.H{"journal": j})
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func updateJournalHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Status      *string `json:"status"`
		ReviewNotes *string `json:"review_notes"`
		ReviewedBy  *string `json:"reviewed_by"`
		PageNumbers *string `json:"page_numbers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	j, err := journals.Update(c.Request.Context(), id, journal.UpdateParams{
		Status:      req.Status,
		ReviewNotes: req.ReviewNotes,
		ReviewedBy:  req.ReviewedBy,
		PageNumbers: req.PageNumbers,
	})
	if err != nil {
		mapJournalErr(c, err, "error updating journal")
		return
	}
	respondOK(c, http.StatusOK, "journal updated successfully", gin.H{"journal": j})
}

func publishJournalHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		PageNumbers string `json:"page_numbers"`
		ReviewedBy  string `json:"reviewed_by"`
	}
	_ = c.ShouldBindJSON(&req) // body optional
	j, err := journals.Publish(c.Request.Context(), id, req.ReviewedBy, req.PageNumbers)
	if err != nil {
		mapJournalErr(c, err, "error publishing journal")
		return
	}
	respondOK(c, http.StatusOK, "journal published successfully", gin.H{"journal": j})
}

func archiveJournalHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	j, err := journals.Archive(c.Request.Context(), id)
	if err != nil {
		mapJournalErr(c, err, "error archiving journal")
		return
	}
	respondOK(c, http.StatusOK, "journal archived successfully", gin.H{"journal": j})
}

func deleteJournalHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := journals.Delete(c.Request.Context(), id); err != nil {
		mapJournalErr(c, err, "error deleting journal")
		return
	}
	respondOK(c, http.StatusOK, "journal deleted successfully", nil)
}

type bulkRequest struct {
	JournalIDs []uint                 `json:"journal_ids"`
	UpdateData map[string]interface{} `json:"update_data"`
}

func bindBulkIDs(c *gin.Context) ([]uint, *bulkRequest, bool) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "journal IDs are required", err)
		return nil, nil, false
	}
	return req.JournalIDs, &req, true
}

func bulkDeleteHandler(c *gin.Context) {
	ids, _, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	n, err := journals.BulkDelete(c.Request.Context(), ids)
	if err != nil {
		mapJournalErr(c, err, "error deleting journals")
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("successfully deleted %d journal(s)", n), gin.H{"deletedCount": n})
}

func bulkArchiveHandler(c *gin.Context) {
	ids, _, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	n, err := journals.BulkArchive(c.Request.Context(), ids)
	if err != nil {
		mapJournalErr(c, err, "error archiving journals")
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("successfully archived %d journal(s)", n), gin.H{"modifiedCount": n})
}

func bulkPublishHandler(c *gin.Context) {
	ids, _, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	n, err := journals.BulkPublish(c.Request.Context(), ids)
	if err != nil {
		mapJournalErr(c, err, "error publishing journals")
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("successfully published %d journal(s)", n), gin.H{"modifiedCount": n})
}

// bulkUpdatableColumns whitelists what the generic bulk patch may touch.
var bulkUpdatableColumns = map[string]bool{
	"status": true, "review_notes": true, "reviewed_by": true,
	"page_numbers": true, "is_archived": true, "volume_year": true,
	"volume_quarter": true,
}

func bulkUpdateHandler(c *gin.Context) {
	ids, req, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	patch := map[string]interface{}{}
	for k, v := range req.UpdateData {
		if bulkUpdatableColumns[k] {
			patch[k] = v
		}
	}
	matched, modified, err := journals.BulkUpdate(c.Request.Context(), ids, patch)
	if err != nil {
		mapJournalErr(c, err, "error performing bulk update")
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("%d journals updated successfully", modified), gin.H{
		"matchedCount":  matched,
		"modifiedCount": modified,
	})
}

func exportCSVHandler(c *gin.Context) {
	filter := journal.ExportFilter{Criteria: searchCriteriaFromQuery(c)}
	if raw := c.Query("journalIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := journal.ParseID(part)
			if err != nil {
				respondErr(c, http.StatusBadRequest, "invalid journal ID in export list", nil)
				return
			}
			filter.IDs = append(filter.IDs, id)
		}
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", journal.ExportFilename(time.Now())))
	if err := journals.ExportCSV(c.Request.Context(), c.Writer, filter); err != nil {
		logUpstreamWarning("csv export", err)
	}
}

// downloadRedirectHandler bumps the counter and redirects to the stored URL,
// using the force-download variant for hosted files.
func downloadRedirectHandler(kind journal.FileKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		j, err := journals.GetByID(c.Request.Context(), id)
		if err != nil {
			mapJournalErr(c, err, "error downloading published journal")
			return
		}
		url, err := journal.DownloadURL(j, kind)
		if err != nil {
			respondErr(c, http.StatusNotFound, "no file found for this published journal", nil)
			return
		}
		journals.BumpDownloadCount(c.Request.Context(), j.ID)
		c.Redirect(http.StatusFound, blobstore.AttachmentURL(url))
	}
}

// directDownloadHandler streams the file through the server with attachment
// headers, for clients that cannot follow cross-origin redirects.
func directDownloadHandler(kind journal.FileKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		j, err := journals.GetByID(c.Request.Context(), id)
		if err != nil {
			mapJournalErr(c, err, "error downloading published journal")
			return
		}
		url, err := journal.DownloadURL(j, kind)
		if err != nil {
			respondErr(c, http.StatusNotFound, "no file found for this published journal", nil)
			return
		}

		contentType := "application/pdf"
		ext := ".pdf"
		if kind == journal.FileDocx {
			contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
			ext = ".docx"
		}
		filename := journal.SanitizeFilename(j.Title) + ext

		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
			client := &http.Client{Timeout: blobCallTimeout}
			resp, err := client.Get(url)
			if err != nil {
				respondErr(c, http.StatusBadGateway, "error streaming file", err)
				return
			}
			defer resp.Body.Close()
			journals.BumpDownloadCount(c.Request.Context(), j.ID)
			c.Header("Content-Type", contentType)
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
			c.Header("Cache-Control", "no-cache")
			if _, err := io.Copy(c.Writer, resp.Body); err != nil {
				logUpstreamWarning("file stream", err)
			}
			return
		}
		journals.BumpDownloadCount(c.Request.Context(), j.ID)
		c.Header("Cache-Control", "no-cache")
		c.FileAttachment(url, filename)
	}
}
