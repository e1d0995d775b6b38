package pipeline

import (
	"context"

	"github.com/JimmiFriborg/embroidery-palette/internal/stitch"
)

// The pipeline performs no I/O itself. Fetching source bytes, persisting
// outputs, updating project records, and encoding vendor embroidery files
// all belong to external collaborators bound to these contracts.

// ObjectStore fetches and stores opaque blobs (source images, generated
// outputs) by identifier.
type ObjectStore interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
	Store(ctx context.Context, id string, data []byte, mimeType string) (string, error)
}

// ProjectStatus is the lifecycle state of a digitizing project record.
type ProjectStatus string

const (
	StatusProcessing ProjectStatus = "processing"
	StatusProcessed  ProjectStatus = "processed"
	StatusGenerated  ProjectStatus = "generated"
	StatusFailed     ProjectStatus = "failed"
)

// ProjectRecord is the subset of a stored project the pipeline's callers
// read and update around a run.
type ProjectRecord struct {
	ID               string            `json:"id"`
	Status           ProjectStatus     `json:"status"`
	SourceImageID    string            `json:"source_image_id,omitempty"`
	ProcessedImageID string            `json:"processed_image_id,omitempty"`
	OutputFileID     string            `json:"output_file_id,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// ProjectStore reads and updates project records.
type ProjectStore interface {
	Project(ctx context.Context, id string) (ProjectRecord, error)
	UpdateStatus(ctx context.Context, id string, status ProjectStatus, fields map[string]string) error
}

// PatternEncoder serializes a stitch record stream, with its per-layer
// thread color and catalog metadata, into a vendor embroidery file format.
// The layers already carry everything the encoder is owed.
type PatternEncoder interface {
	Encode(layers []stitch.Layer) ([]byte, error)
}
