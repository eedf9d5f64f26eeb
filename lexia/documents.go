package lexia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

const (
	defaultPage    = 1
	defaultPerPage = 50

	uploadFileField = "file"
)

// UploadDocument uploads the file at filePath into an area.
func (c *Client) UploadDocument(ctx context.Context, filePath string, areaID int64, description string) (Object, error) {
	return c.uploadPath(ctx, "/public/api/upload", filePath, areaID, description)
}

// UploadAndProcessDocument uploads the file at filePath and starts processing it.
func (c *Client) UploadAndProcessDocument(ctx context.Context, filePath string, areaID int64, description string) (Object, error) {
	return c.uploadPath(ctx, "/public/api/upload-and-process", filePath, areaID, description)
}

// UploadDocumentReader uploads content read from r under the given file name.
// When process is true the document is processed right after upload.
func (c *Client) UploadDocumentReader(ctx context.Context, name string, r io.Reader, areaID int64, description string, process bool) (Object, error) {
	endpoint := "/public/api/upload"
	if process {
		endpoint = "/public/api/upload-and-process"
	}
	return c.upload(ctx, endpoint, name, r, areaID, description)
}

func (c *Client) uploadPath(ctx context.Context, endpoint, filePath string, areaID int64, description string) (Object, error) {
	f, err := c.openFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.upload(ctx, endpoint, filepath.Base(filePath), f, areaID, description)
}

func (c *Client) upload(ctx context.Context, endpoint, name string, r io.Reader, areaID int64, description string) (Object, error) {
	if areaID <= 0 {
		return nil, inputError("area_id must be a positive integer", map[string]string{"area_id": "must be greater than 0"})
	}
	if name == "" {
		return nil, inputError("file name is required", nil)
	}
	if r == nil {
		return nil, inputError("file content is required", nil)
	}

	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   endpoint,
		Form: map[string]string{
			"area_id":     strconv.FormatInt(areaID, 10),
			"description": description,
		},
		Files: []File{{Field: uploadFileField, Name: name, Content: r}},
	})
}

// openFile opens an upload file through the configured filesystem.
func (c *Client) openFile(name string) (afero.File, error) {
	info, err := c.fs.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newError(KindFile, "file not found: "+name, err)
		}
		return nil, newError(KindFile, "cannot access file: "+name, err)
	}
	if info.IsDir() {
		return nil, newError(KindFile, "not a regular file: "+name, nil)
	}

	f, err := c.fs.Open(name)
	if err != nil {
		return nil, newError(KindFile, "cannot open file: "+name, err)
	}
	return f, nil
}

// GetDocumentExtractedData returns the data extracted from a document
func (c *Client) GetDocumentExtractedData(ctx context.Context, documentID int64) (Object, error) {
	if err := checkID("document_id", documentID); err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/public/api/documents/%d/extracted-data", documentID),
	})
}

// GetDocumentsExtractedDataBatch returns the extracted data of several documents in one call
func (c *Client) GetDocumentsExtractedDataBatch(ctx context.Context, documentIDs []int64) (Object, error) {
	if err := checkIDs("document_ids", documentIDs); err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/public/api/documents/extracted-data/batch",
		Body:   map[string]any{"document_ids": documentIDs},
	})
}

// ListProcessedDocuments lists processed documents with pagination and filters
func (c *Client) ListProcessedDocuments(ctx context.Context, params ListDocumentsParams) (Object, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	query := pageQuery(params.Page, params.PerPage)
	if params.AreaID > 0 {
		query.Set("area_id", strconv.FormatInt(params.AreaID, 10))
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}

	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/public/api/documents/processed",
		Query:  query,
	})
}

// GetDocumentURL returns the download URL of a document
func (c *Client) GetDocumentURL(ctx context.Context, documentID int64) (Object, error) {
	if err := checkID("document_id", documentID); err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/public/api/documents/%d/url", documentID),
	})
}

// BulkDeleteDocuments deletes several documents
func (c *Client) BulkDeleteDocuments(ctx context.Context, documentIDs []int64) (Object, error) {
	if err := checkIDs("document_ids", documentIDs); err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   "/public/api/documents/bulk",
		Body:   map[string]any{"document_ids": documentIDs},
	})
}

func pageQuery(page, perPage int) url.Values {
	if page <= 0 {
		page = defaultPage
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	return query
}

func checkID(field string, id int64) error {
	if id <= 0 {
		return inputError(field+" must be a positive integer", map[string]string{field: "must be greater than 0"})
	}
	return nil
}

func checkIDs(field string, ids []int64) error {
	if len(ids) == 0 {
		return inputError(field+" must not be empty", map[string]string{field: "is required"})
	}
	for _, id := range ids {
		if id <= 0 {
			return inputError(fmt.Sprintf("%s contains invalid id %d", field, id), map[string]string{field: "ids must be greater than 0"})
		}
	}
	return nil
}
