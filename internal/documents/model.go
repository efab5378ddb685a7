package documents

import "time"

// Document is a file owned by a client, and therefore owned by the
// client's tenant transitively. Only the metadata lives here; the payload
// sits in object storage outside this service.
type Document struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  int64     `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateDocumentRequest struct {
	ClientID    int64  `json:"client_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=200"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,max=100"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

type ListDocumentsRequest struct {
	ClientID int64 `json:"client_id" validate:"required,gt=0"`
	Limit    int   `json:"limit" validate:"gte=0,lte=200"`
	Offset   int   `json:"offset" validate:"gte=0"`
}
