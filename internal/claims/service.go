package claims

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"cmcs-backend/internal/identity"
	"cmcs-backend/internal/models"
	"cmcs-backend/internal/storage"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxUploadSize = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

var (
	minHours = decimal.NewFromFloat(0.5)
	maxHours = decimal.NewFromInt(200)
	minRate  = decimal.NewFromInt(100)
	maxRate  = decimal.NewFromInt(1000)
)

// Service enforces the claim lifecycle: submission validation, status
// transitions and the derived amount. It is the only place business rules live.
type Service struct {
	db    *gorm.DB
	store storage.Store
	now   func() time.Time
}

func NewService(db *gorm.DB, store storage.Store) *Service {
	return &Service{db: db, store: store, now: time.Now}
}

type SubmitInput struct {
	ClaimMonth  time.Time
	TotalHours  decimal.Decimal
	RatePerHour decimal.Decimal
	Notes       string
}

// Upload is one candidate supporting document. Open is called at most once,
// only after the size and extension checks pass.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// SubmitClaim validates and persists a new claim, then attaches the accepted
// uploads. The claim row is committed before any document is written, so a
// document always references a valid claim id. Document rows are flushed in a
// single batch after the file loop.
//
// A storage failure mid-loop returns the already-persisted claim together with
// the error; no document rows are flushed in that case. Callers are expected
// to downgrade that error to a soft failure (the claim survives).
func (s *Service) SubmitClaim(who identity.Identity, in SubmitInput, uploads []Upload) (*models.Claim, error) {
	if verr := validate(in); verr != nil {
		return nil, verr
	}

	month := in.ClaimMonth
	if month.Year() < 2000 {
		// An unset date field would otherwise produce year-zero records.
		now := s.now()
		month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	}

	claim := &models.Claim{
		ClaimMonth:    month,
		TotalHours:    in.TotalHours,
		RatePerHour:   in.RatePerHour,
		Notes:         in.Notes,
		Status:        models.StatusSubmitted,
		SubmittedDate: s.now(),
		LecturerName:  who.Name,
		LecturerEmail: who.Email,
	}

	if err := s.db.Create(claim).Error; err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}

	docs := make([]models.SupportingDocument, 0, len(uploads))
	for _, up := range uploads {
		if up.Size <= 0 || up.Size >= maxUploadSize {
			continue
		}
		ext := strings.ToLower(filepath.Ext(up.Filename))
		if !allowedExtensions[ext] {
			continue
		}

		storedName := storage.StoredName(ext)
		content, err := up.Open()
		if err != nil {
			return claim, &storage.StorageError{Op: "open", Name: up.Filename, Err: err}
		}
		saveErr := s.store.Save(storedName, content)
		content.Close()
		if saveErr != nil {
			return claim, saveErr
		}

		docs = append(docs, models.SupportingDocument{
			ClaimID:    claim.ID,
			FileName:   up.Filename,
			StoredName: storedName,
			FileSize:   up.Size,
			UploadDate: s.now(),
		})
	}

	if len(docs) > 0 {
		if err := s.db.Create(&docs).Error; err != nil {
			return claim, fmt.Errorf("save supporting documents: %w", err)
		}
		claim.SupportingDocuments = docs
	}

	return claim, nil
}

func validate(in SubmitInput) *ValidationError {
	fields := map[string]string{}

	if in.TotalHours.LessThan(minHours) || in.TotalHours.GreaterThan(maxHours) {
		fields["total_hours"] = "total hours must be between 0.5 and 200"
	}
	if in.RatePerHour.LessThan(minRate) || in.RatePerHour.GreaterThan(maxRate) {
		fields["rate_per_hour"] = "rate per hour must be between 100 and 1000"
	}
	if utf8.RuneCountInString(in.Notes) > 500 {
		fields["notes"] = "notes must be at most 500 characters"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ApproveClaim overwrites the status unconditionally; there is no transition
// guard, any status may become Approved. A missing id is a no-op.
func (s *Service) ApproveClaim(id uint) (*models.Claim, error) {
	return s.setStatus(id, models.StatusApproved)
}

// RejectClaim mirrors ApproveClaim for the Rejected status.
func (s *Service) RejectClaim(id uint) (*models.Claim, error) {
	return s.setStatus(id, models.StatusRejected)
}

// StartReview marks a claim as Under Review so it stays on the reviewer queue.
func (s *Service) StartReview(id uint) (*models.Claim, error) {
	return s.setStatus(id, models.StatusUnderReview)
}

// setStatus mutates only the status column. Submitted date, amounts and
// documents are untouched. Returns (nil, nil) when the claim does not exist.
func (s *Service) setStatus(id uint, status models.ClaimStatus) (*models.Claim, error) {
	var claim models.Claim
	if err := s.db.First(&claim, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("status change to %q skipped, claim %d not found", status, id)
			return nil, nil
		}
		return nil, fmt.Errorf("load claim %d: %w", id, err)
	}

	if err := s.db.Model(&claim).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update claim %d status: %w", id, err)
	}
	claim.Status = status
	return &claim, nil
}

// ListForReviewer returns the claims the caller is allowed to see: reviewers
// get the pending queue (Submitted and Under Review), lecturers their own
// claims. Both newest first.
func (s *Service) ListForReviewer(who identity.Identity) ([]models.Claim, error) {
	q := s.db.Preload("SupportingDocuments").Order("submitted_date desc")

	if who.Role == identity.RoleAdmin {
		q = q.Where("status IN ?", []models.ClaimStatus{models.StatusSubmitted, models.StatusUnderReview})
	} else {
		q = q.Where("lecturer_email = ?", who.Email)
	}

	var out []models.Claim
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return out, nil
}

// GetClaim loads a claim with its documents for the review view.
func (s *Service) GetClaim(id uint) (*models.Claim, error) {
	var claim models.Claim
	err := s.db.Preload("SupportingDocuments").First(&claim, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load claim %d: %w", id, err)
	}
	return &claim, nil
}

// StatusEvent is one entry in the synthesized status narrative.
type StatusEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
}

// TrackClaim returns the claim and its status narrative. The narrative is
// synthesized from current state, not a persisted audit trail: the first entry
// is always the submission, and the last reflects whatever the status is right
// now, timestamped at the time of the call.
func (s *Service) TrackClaim(id uint) (*models.Claim, []StatusEvent, error) {
	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, nil, err
	}

	history := []StatusEvent{
		{Timestamp: claim.SubmittedDate, Event: "Claim Submitted by Lecturer."},
	}

	switch claim.Status {
	case models.StatusUnderReview:
		history = append(history, StatusEvent{Timestamp: s.now(), Event: "Claim is under review by Programme Coordinator."})
	case models.StatusApproved:
		history = append(history, StatusEvent{Timestamp: s.now(), Event: "Claim has been approved."})
	case models.StatusRejected:
		history = append(history, StatusEvent{Timestamp: s.now(), Event: "Claim has been rejected."})
	}

	return claim, history, nil
}

// DownloadDocument resolves a document id to its original filename, MIME type
// and content. A missing record and a missing backing file both surface as
// ErrNotFound.
func (s *Service) DownloadDocument(id uint) (string, string, []byte, error) {
	var doc models.SupportingDocument
	err := s.db.First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", nil, ErrNotFound
	}
	if err != nil {
		return "", "", nil, fmt.Errorf("load document %d: %w", id, err)
	}

	data, err := s.store.Read(doc.StoredName)
	if errors.Is(err, storage.ErrNotFound) {
		return "", "", nil, ErrNotFound
	}
	if err != nil {
		return "", "", nil, err
	}

	return doc.FileName, ContentTypeFor(doc.StoredName), data, nil
}

// DeleteClaim removes a claim and, with it, all of its supporting documents.
// No route exposes this; the normal lifecycle never deletes a claim.
func (s *Service) DeleteClaim(id uint) error {
	if err := s.db.Select(clause.Associations).Delete(&models.Claim{ID: id}).Error; err != nil {
		return fmt.Errorf("delete claim %d: %w", id, err)
	}
	return nil
}
