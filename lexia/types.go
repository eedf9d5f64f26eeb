package lexia

import "io"

// Object is a decoded JSON object. Nested values are nil, bool,
// json.Number, string, []any or map[string]any.
type Object = map[string]any

// File is one part of a multipart upload.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Attachment is an in-memory file, e.g. an email attachment.
type Attachment struct {
	Filename string
	Content  []byte
}

// Health is the result of HealthCheck
type Health struct {
	Status        string `json:"status"`
	APIAccessible bool   `json:"api_accessible"`
	Error         string `json:"error,omitempty"`
}

// OK reports whether the API answered
func (h Health) OK() bool {
	return h.Status == HealthStatusOK
}

const (
	HealthStatusOK    = "ok"
	HealthStatusError = "error"
)

// Priority of a queue item
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// String returns the API name of the priority. Unknown values map to Medium.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityHigh:
		return "High"
	default:
		return "Medium"
	}
}

// Queue item statuses understood by the queue service.
const (
	QueueStatusNew        = "New"
	QueueStatusInProgress = "In Progress"
	QueueStatusSuccessful = "Successful"
	QueueStatusFailed     = "Failed"
)

// Merge modes for UpdateQueueItem
const (
	MergeModeUpdate  = "update"
	MergeModeReplace = "replace"
)

// Email body types
const (
	BodyTypeHTML = "html"
	BodyTypeText = "texto"
)

// ListDocumentsParams filters ListProcessedDocuments. Zero values use defaults.
type ListDocumentsParams struct {
	Page    int    `json:"page" validate:"gte=0"`
	PerPage int    `json:"per_page" validate:"gte=0,lte=500"`
	AreaID  int64  `json:"area_id" validate:"gte=0"`
	Status  string `json:"status"`
}

// NextItemParams selects the next queue item. Use NewNextItemParams for the defaults.
type NextItemParams struct {
	Queue            string `json:"queue" validate:"required"`
	Status           string `json:"status" validate:"omitempty,queue_status"`
	PriorityOrder    bool   `json:"priority_order"`
	MarkAsProcessing bool   `json:"mark_as_processing"`
}

// NewNextItemParams returns params for the next "New" item in priority order.
func NewNextItemParams(queue string) NextItemParams {
	return NextItemParams{
		Queue:         queue,
		Status:        QueueStatusNew,
		PriorityOrder: true,
	}
}

// UpdateItemParams describes a queue item update
type UpdateItemParams struct {
	ItemID    string `json:"item_id" validate:"required,notblank"`
	Data      Object `json:"data,omitempty"`
	Status    string `json:"status,omitempty" validate:"omitempty,queue_status"`
	MergeMode string `json:"merge_mode" validate:"omitempty,oneof=update replace"`
	Etapa     string `json:"etapa,omitempty" validate:"max=255"`
}

// FinishItemParams describes how a queue item is finished. A nil Progress means 100.
type FinishItemParams struct {
	Output   Object `json:"output,omitempty"`
	Progress *int   `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Etapa    string `json:"etapa,omitempty" validate:"max=255"`
}

// GridQuery pages and filters grid rows. Zero values use defaults.
type GridQuery struct {
	Page    int               `json:"page" validate:"gte=0"`
	PerPage int               `json:"per_page" validate:"gte=0,lte=500"`
	Filters map[string]string `json:"filters"`
}

// SendEmailParams describes a new outgoing email
type SendEmailParams struct {
	To          []string     `json:"to" validate:"required,min=1,dive,required"`
	Subject     string       `json:"subject" validate:"required"`
	Body        string       `json:"body" validate:"required"`
	BodyType    string       `json:"body_type" validate:"omitempty,oneof=html texto"`
	CC          []string     `json:"cc,omitempty" validate:"dive,required"`
	BCC         []string     `json:"bcc,omitempty" validate:"dive,required"`
	ReplyTo     string       `json:"reply_to,omitempty"`
	BodyText    string       `json:"body_text,omitempty"`
	Attachments []Attachment `json:"-"`
}

// ReplyParams describes a reply to a received email
type ReplyParams struct {
	EmailID     string       `json:"email_id" validate:"required,notblank"`
	Message     string       `json:"mensaje" validate:"required"`
	ReplyType   string       `json:"tipo_respuesta" validate:"omitempty,oneof=html texto"`
	Subject     string       `json:"asunto_personalizado,omitempty"`
	Attachments []Attachment `json:"-"`
}
