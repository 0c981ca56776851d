package reports

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicfix/civicfix-api/internal/pkg/logger"
	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

// ReportStore is the durable store the pipeline writes to and the read
// endpoints serve from
type ReportStore interface {
	ExistenceChecker
	Insert(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	ListRecent(ctx context.Context) ([]Report, error)
	UpdateStatus(ctx context.Context, id, status, assignedParty string) (*Report, error)
}

// ObjectStore uploads the original image bytes and returns a public URL
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// Service is the ingestion pipeline: validate, classify (best-effort), upload
// (mandatory when an image is present), allocate an id, persist atomically.
type Service struct {
	store      ReportStore
	alloc      IDAllocator
	classifier ImageClassifier
	objects    ObjectStore
	log        *logger.Logger
}

func NewService(store ReportStore, alloc IDAllocator, classifier ImageClassifier, objects ObjectStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.New(logger.INFO)
	}
	return &Service{
		store:      store,
		alloc:      alloc,
		classifier: classifier,
		objects:    objects,
		log:        log,
	}
}

// Submit runs one submission through the pipeline. The caller receives either
// a complete receipt or an error; no partially persisted report is possible.
func (s *Service) Submit(ctx context.Context, sub *Submission) (*Receipt, error) {
	if err := ValidateSubmission(sub); err != nil {
		return nil, err
	}

	var (
		imageURL       *string
		classification *Classification
	)

	if sub.Image != nil {
		// Classification and upload are independent network calls; run them
		// concurrently and join before persisting anything.
		var (
			wg     sync.WaitGroup
			cls    *Classification
			clsErr error
			url    string
			upErr  error
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			cls, clsErr = s.classify(ctx, sub.Image)
		}()
		go func() {
			defer wg.Done()
			url, upErr = s.upload(ctx, sub.Image)
		}()
		wg.Wait()

		// A report that claims an image but lost it would break the
		// imageUrl invariant, so upload failure aborts the submission.
		if upErr != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, upErr)
		}
		imageURL = &url

		// Classification is best-effort: log and fall back to the
		// caller-supplied category.
		if clsErr != nil {
			s.log.Warn("image classification failed, keeping submitted category %q: %v", sub.Category, clsErr)
		} else {
			classification = cls
		}
	}

	category := sub.Category
	var detail map[string]interface{}
	if classification != nil {
		category = classification.Label
		detail = classification.Detail
	}

	id, err := s.alloc.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	report := &Report{
		ID:             id,
		CreatedAt:      now,
		UpdatedAt:      now,
		Category:       category,
		CategoryDetail: detail,
		Description:    sub.Description,
		Location:       NewGeoPoint(sub.Geo.Longitude, sub.Geo.Latitude),
		Accuracy:       sub.Geo.Accuracy,
		Severity:       sub.Severity,
		Contact:        sub.Contact,
		Status:         StatusSubmitted,
		AssignedParty:  sub.ContractorAssigned,
	}
	if imageURL != nil {
		report.ImageURL = *imageURL
	}

	if err := s.store.Insert(ctx, report); err != nil {
		return nil, fmt.Errorf("%w: persist report: %v", apperrors.ErrInternal, err)
	}

	receipt := &Receipt{
		ReportID: id,
		ImageURL: imageURL,
	}
	if classification != nil {
		receipt.Classification = classification.Label
	}
	return receipt, nil
}

func (s *Service) classify(ctx context.Context, img *ImageUpload) (*Classification, error) {
	if s.classifier == nil {
		return nil, fmt.Errorf("no classifier configured")
	}
	return s.classifier.Classify(ctx, img.Data, img.Filename, img.ContentType)
}

func (s *Service) upload(ctx context.Context, img *ImageUpload) (string, error) {
	if s.objects == nil {
		return "", fmt.Errorf("no object store configured")
	}
	return s.objects.Upload(ctx, img.Data, storageKey(img.Filename), img.ContentType)
}

// maxListReports caps the dashboard listing; it serves recent activity, not
// the full archive.
const maxListReports = 500

// Get returns one report by id
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	return s.store.GetByID(ctx, id)
}

// List returns the most recent reports, capped at maxListReports
func (s *Service) List(ctx context.Context) ([]Report, error) {
	reports, err := s.store.ListRecent(ctx)
	if err != nil {
		return nil, err
	}
	if len(reports) > maxListReports {
		reports = reports[:maxListReports]
	}
	return reports, nil
}

// UpdateStatus applies a dashboard workflow transition
func (s *Service) UpdateStatus(ctx context.Context, id, status, assignedParty string) (*Report, error) {
	return s.store.UpdateStatus(ctx, id, status, assignedParty)
}

// storageKey generates a fresh key per upload, independent of the report id,
// preserving the original file extension when present.
func storageKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
