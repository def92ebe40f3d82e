package patta2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrInvalidRecord            = errors.New("invalid record")
	ErrSourceNotReady           = errors.New("certificate source not ready for capture")
	ErrEncodingCapacityExceeded = errors.New("verification payload exceeds QR capacity")
	ErrRasterization            = errors.New("rasterization failed")
	ErrPagination               = errors.New("pagination failed")
	ErrDocumentBuild            = errors.New("PDF assembly failed")
	ErrEmit                     = errors.New("emitting output failed")
	ErrInvalidFilename          = errors.New("invalid output filename")
	ErrExporterClosed           = errors.New("exporter is closed")
	ErrInternal                 = errors.New("internal error")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Asset errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// Stage names a step of the export pipeline.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageSettings  Stage = "settings"
	StagePayload   Stage = "payload"
	StageEncode    Stage = "encode"
	StageRender    Stage = "render"
	StageRasterize Stage = "rasterize"
	StagePaginate  Stage = "paginate"
	StageAssemble  Stage = "assemble"
	StageWatermark Stage = "watermark"
	StageEmit      Stage = "emit"
)

// ExportError tags a failure with the stage and record it belongs to.
// It unwraps to the underlying error, so errors.Is matches sentinels.
type ExportError struct {
	Stage    Stage
	RecordID string
	Err      error
}

func (e *ExportError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("export %s (record %s): %v", e.Stage, e.RecordID, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func stageError(stage Stage, recordID string, err error) error {
	if err == nil {
		return nil
	}
	var ee *ExportError
	if errors.As(err, &ee) {
		return err
	}
	return &ExportError{Stage: stage, RecordID: recordID, Err: err}
}
