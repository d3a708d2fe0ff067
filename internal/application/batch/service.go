package batch

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/internal/infrastructure/storage/minio"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// Uploader stores a finished report file.
type Uploader interface {
	UploadFile(ctx context.Context, runID, path string) (*minio.UploadResult, error)
}

// UploadRecorder counts upload outcomes.
type UploadRecorder interface {
	RecordUpload(err error)
}

type nopUploadRecorder struct{}

func (nopUploadRecorder) RecordUpload(error) {}

// Request describes one batch run.
type Request struct {
	// Root holds one subdirectory per target.
	Root   string
	Format Format
	// Output is the report path. When empty the report goes to Stdout, or
	// to a temporary file if only an upload is wanted.
	Output string
	Stdout io.Writer
	Upload bool
}

// Service discovers targets, runs them and writes the report.
type Service struct {
	runner   *Runner
	layout   Layout
	uploader Uploader
	uploads  UploadRecorder
	logger   logging.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLayout overrides DefaultLayout.
func WithLayout(l Layout) ServiceOption {
	return func(s *Service) { s.layout = l }
}

// WithUploader enables Request.Upload.
func WithUploader(u Uploader, rec UploadRecorder) ServiceOption {
	return func(s *Service) {
		s.uploader = u
		if rec != nil {
			s.uploads = rec
		}
	}
}

func NewService(runner *Runner, logger logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{
		runner:  runner,
		layout:  DefaultLayout(),
		uploads: nopUploadRecorder{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the whole request. Per-job failures are records, not errors;
// an error means discovery, the report or the upload failed. The run is
// returned whenever scoring happened, even if writing it out failed.
func (s *Service) Execute(ctx context.Context, req Request) (*Run, error) {
	if req.Format == "" {
		req.Format = FormatJSONL
	}
	if req.Upload && s.uploader == nil {
		return nil, errors.InvalidParam("report upload requested but storage is not configured")
	}

	targets, err := Discover(req.Root, s.layout)
	if err != nil {
		return nil, err
	}

	run, err := s.runner.Run(ctx, targets)
	if err != nil {
		return nil, err
	}

	path, err := s.writeReport(run, req)
	if err != nil {
		return run, err
	}
	if path != "" && req.Output == "" {
		defer os.Remove(path)
	}
	run.Summary.Output = req.Output

	if req.Upload {
		res, err := s.uploader.UploadFile(ctx, run.ID, path)
		s.uploads.RecordUpload(err)
		if err != nil {
			return run, err
		}
		run.Summary.ObjectKey = res.Key
		s.logger.Info("batch report uploaded",
			logging.String("run_id", run.ID),
			logging.String("key", res.Key),
			logging.String("url", res.URL),
		)
	}
	return run, nil
}

// writeReport returns the file the report landed in, or "" when it was
// streamed to req.Stdout.
func (s *Service) writeReport(run *Run, req Request) (string, error) {
	var (
		w    io.Writer
		path string
	)
	switch {
	case req.Output != "":
		path = req.Output
	case req.Upload:
		path = filepath.Join(os.TempDir(), run.ID+req.Format.Ext())
	case req.Stdout != nil:
		w = req.Stdout
	default:
		return "", nil
	}

	if w == nil {
		f, err := os.Create(path)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to create report").WithDetail("path=" + path)
		}
		defer f.Close()
		w = f
	}

	sink, err := NewSink(req.Format, w)
	if err != nil {
		return "", err
	}
	if err := WriteAll(sink, run.Records); err != nil {
		return "", err
	}
	return path, nil
}

//Personal.AI order the ending
