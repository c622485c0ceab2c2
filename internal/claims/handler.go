package claims

import (
	"errors"
	"fmt"
	"io"
	"time"

	"cmcs-backend/internal/identity"
	"cmcs-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/hako/durafmt"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type DocumentResponse struct {
	ID         uint   `json:"id"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	UploadDate string `json:"upload_date"`
}

type ClaimResponse struct {
	ID            uint               `json:"id"`
	ClaimMonth    string             `json:"claim_month"`
	TotalHours    string             `json:"total_hours"`
	RatePerHour   string             `json:"rate_per_hour"`
	TotalAmount   string             `json:"total_amount"`
	Notes         string             `json:"notes"`
	Status        models.ClaimStatus `json:"status"`
	SubmittedDate string             `json:"submitted_date"`
	LecturerName  string             `json:"lecturer_name"`
	LecturerEmail string             `json:"lecturer_email"`
	Documents     []DocumentResponse `json:"supporting_documents"`
}

type StatusEventResponse struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

func toClaimResponse(c *models.Claim) ClaimResponse {
	docs := make([]DocumentResponse, 0, len(c.SupportingDocuments))
	for _, d := range c.SupportingDocuments {
		docs = append(docs, DocumentResponse{
			ID:         d.ID,
			FileName:   d.FileName,
			FileSize:   d.FileSize,
			UploadDate: d.UploadDate.Format(time.RFC3339),
		})
	}

	return ClaimResponse{
		ID:            c.ID,
		ClaimMonth:    c.ClaimMonth.Format("2006-01"),
		TotalHours:    c.TotalHours.String(),
		RatePerHour:   c.RatePerHour.String(),
		TotalAmount:   c.TotalAmount().String(),
		Notes:         c.Notes,
		Status:        c.Status,
		SubmittedDate: c.SubmittedDate.Format(time.RFC3339),
		LecturerName:  c.LecturerName,
		LecturerEmail: c.LecturerEmail,
		Documents:     docs,
	}
}

// parseClaimMonth accepts the form's month value in a few reasonable shapes.
func parseClaimMonth(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

// POST /api/claims (multipart)
// Fields: claim_month, total_hours, rate_per_hour, notes; file parts: documents
func SubmitClaimHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := identity.FromContext(c)
		if err != nil {
			return err
		}

		fieldErrs := map[string]string{}
		var in SubmitInput

		monthVal := c.FormValue("claim_month")
		if monthVal == "" {
			fieldErrs["claim_month"] = "claim month is required"
		} else if month, perr := parseClaimMonth(monthVal); perr != nil {
			fieldErrs["claim_month"] = "claim month is invalid"
		} else {
			in.ClaimMonth = month
		}

		if hours, perr := decimal.NewFromString(c.FormValue("total_hours")); perr != nil {
			fieldErrs["total_hours"] = "total hours must be a number"
		} else {
			in.TotalHours = hours
		}

		if rate, perr := decimal.NewFromString(c.FormValue("rate_per_hour")); perr != nil {
			fieldErrs["rate_per_hour"] = "rate per hour must be a number"
		} else {
			in.RatePerHour = rate
		}

		in.Notes = c.FormValue("notes")

		if len(fieldErrs) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
		}

		var uploads []Upload
		if form, ferr := c.MultipartForm(); ferr == nil && form != nil {
			for _, fh := range form.File["documents"] {
				fh := fh
				uploads = append(uploads, Upload{
					Filename: fh.Filename,
					Size:     fh.Size,
					Open: func() (io.ReadCloser, error) {
						f, oerr := fh.Open()
						if oerr != nil {
							return nil, oerr
						}
						return f, nil
					},
				})
			}
		}

		claim, err := svc.SubmitClaim(who, in, uploads)

		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Fields})
		}
		if err != nil {
			log.Errorf("error submitting claim: %v", err)
			if claim == nil {
				return fiber.NewError(fiber.StatusInternalServerError,
					"An error occurred while submitting your claim. Please try again.")
			}
			// The claim row is already committed; keep it and report a soft
			// failure rather than rolling anything back. Documents that did
			// not make it to storage are simply absent.
			return c.JSON(fiber.Map{
				"claim":   toClaimResponse(claim),
				"warning": "Your claim was submitted, but some supporting documents could not be saved. Please try again.",
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toClaimResponse(claim))
	}
}

// GET /api/claims
func ListClaimsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := identity.FromContext(c)
		if err != nil {
			return err
		}

		list, err := svc.ListForReviewer(who)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list claims")
		}

		res := make([]ClaimResponse, 0, len(list))
		for i := range list {
			res = append(res, toClaimResponse(&list[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/claims/:id
func GetClaimHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid claim id")
		}

		claim, err := svc.GetClaim(uint(id))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Claim not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load claim")
		}

		return c.JSON(toClaimResponse(claim))
	}
}

// GET /api/claims/:id/track
func TrackClaimHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid claim id")
		}

		claim, history, err := svc.TrackClaim(uint(id))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Claim not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not track claim")
		}

		events := make([]StatusEventResponse, 0, len(history))
		for _, ev := range history {
			events = append(events, StatusEventResponse{
				Timestamp: ev.Timestamp.Format("2006-01-02 15:04:05"),
				Event:     ev.Event,
			})
		}

		age := durafmt.Parse(time.Since(claim.SubmittedDate).Round(time.Second)).LimitFirstN(2).String()

		return c.JSON(fiber.Map{
			"claim":   toClaimResponse(claim),
			"history": events,
			"age":     age,
		})
	}
}

func statusChangeHandler(change func(*Service, uint) (*models.Claim, error), verb string, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid claim id")
		}

		claim, err := change(svc, uint(id))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update claim status")
		}
		if claim == nil {
			// Missing claim is a no-op: no confirmation, no error.
			return c.JSON(fiber.Map{})
		}

		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Claim #%d has been %s.", id, verb),
			"claim":   toClaimResponse(claim),
		})
	}
}

// POST /api/claims/:id/approve (admin)
func ApproveClaimHandler(svc *Service) fiber.Handler {
	return statusChangeHandler((*Service).ApproveClaim, "approved", svc)
}

// POST /api/claims/:id/reject (admin)
func RejectClaimHandler(svc *Service) fiber.Handler {
	return statusChangeHandler((*Service).RejectClaim, "rejected", svc)
}

// POST /api/claims/:id/review (admin)
func StartReviewHandler(svc *Service) fiber.Handler {
	return statusChangeHandler((*Service).StartReview, "marked as under review", svc)
}

// GET /api/documents/:id/download
func DownloadDocumentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
		}

		fileName, contentType, data, err := svc.DownloadDocument(uint(id))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Document not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not read document")
		}

		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
		return c.Send(data)
	}
}
