package lexia

import (
	"context"
	"io"
)

// Executor performs raw API calls
type Executor interface {
	Do(ctx context.Context, req *Request) (Object, error)
	DoRaw(ctx context.Context, req *Request) ([]byte, error)
}

// Documents defines document upload and retrieval operations
type Documents interface {
	UploadDocument(ctx context.Context, filePath string, areaID int64, description string) (Object, error)
	UploadAndProcessDocument(ctx context.Context, filePath string, areaID int64, description string) (Object, error)
	UploadDocumentReader(ctx context.Context, name string, r io.Reader, areaID int64, description string, process bool) (Object, error)
	GetDocumentExtractedData(ctx context.Context, documentID int64) (Object, error)
	GetDocumentsExtractedDataBatch(ctx context.Context, documentIDs []int64) (Object, error)
	ListProcessedDocuments(ctx context.Context, params ListDocumentsParams) (Object, error)
	GetDocumentURL(ctx context.Context, documentID int64) (Object, error)
	BulkDeleteDocuments(ctx context.Context, documentIDs []int64) (Object, error)
}

// Queues defines work-queue operations
type Queues interface {
	AddQueueItem(ctx context.Context, queue string, data Object, priority Priority) (Object, error)
	GetNextQueueItem(ctx context.Context, params NextItemParams) (Object, error)
	UpdateQueueItem(ctx context.Context, params UpdateItemParams) (Object, error)
	FinishQueueItem(ctx context.Context, itemID string, params FinishItemParams) (Object, error)
	BulkDeleteQueueItems(ctx context.Context, itemIDs []string) (Object, error)
	GetQueueAnalytics(ctx context.Context, period string) (Object, error)
}

// Grids defines grid data access
type Grids interface {
	GetGridData(ctx context.Context, gridID int64, q GridQuery) (Object, error)
	GetGridInfo(ctx context.Context, gridID int64) (Object, error)
}

// Emails defines email operations
type Emails interface {
	GetEmail(ctx context.Context, emailID string) (Object, error)
	ReplyToEmail(ctx context.Context, params ReplyParams) (Object, error)
	SendEmail(ctx context.Context, params SendEmailParams) (Object, error)
	SendSimpleEmail(ctx context.Context, to, subject, body, bodyType string) (Object, error)
	SendNotificationEmail(ctx context.Context, to []string, templateType string, templateData Object) (Object, error)
}

// API is the complete surface of Client
type API interface {
	Executor
	Documents
	Queues
	Grids
	Emails

	ListAreas(ctx context.Context) (Object, error)
	HealthCheck(ctx context.Context) (Health, error)
}

var _ API = (*Client)(nil)
