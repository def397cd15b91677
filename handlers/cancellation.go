package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"staynest/middleware"
	"staynest/models"
	"staynest/services/cancellation"
	"staynest/services/storage"
	"staynest/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CancellationHandler exposes the cancellation workflow over HTTP.
type CancellationHandler struct {
	Svc      cancellation.Orchestrator
	Calendar cancellation.CalendarBlockingStore
	Proofs   storage.ProofStorageService
}

// NewCancellationHandler wires the handler with its services.
func NewCancellationHandler(svc cancellation.Orchestrator, calendar cancellation.CalendarBlockingStore, proofs storage.ProofStorageService) *CancellationHandler {
	return &CancellationHandler{Svc: svc, Calendar: calendar, Proofs: proofs}
}

type cancelBookingInput struct {
	Reason string `form:"reason" json:"reason"`
}

// CancelBooking handles POST /bookings/:id/cancel. The caller's role decides
// the actor; an optional multipart "proof" file is uploaded before the
// workflow runs so evidence-backed reasons can be validated.
func (h *CancellationHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")

	var input cancelBookingInput
	if err := c.ShouldBind(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	actorID := c.GetString(middleware.ContextUserID)
	actor := actorFromRole(c.GetString(middleware.ContextRole))

	proofRef, ok := h.uploadProofIfPresent(c)
	if !ok {
		return
	}

	result, err := h.Svc.Cancel(c.Request.Context(), models.CancellationRequest{
		BookingID: bookingID,
		Actor:     actor,
		ActorID:   actorID,
		Reason:    input.Reason,
		ProofRef:  proofRef,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	status := http.StatusOK
	if len(result.PendingSteps) > 0 {
		// Terminal write landed but side effects are still being retried.
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

// CheckAvailability handles GET /listings/:id/availability?start=&end=.
func (h *CancellationHandler) CheckAvailability(c *gin.Context) {
	listingID := c.Param("id")
	rng, err := parseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	blocked, err := h.Calendar.IsRangeBlocked(c.Request.Context(), listingID, rng)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing_id": listingID, "blocked": blocked})
}

// ResumeCancellation handles POST /admin/cancellations/:id/resume.
func (h *CancellationHandler) ResumeCancellation(c *gin.Context) {
	result, err := h.Svc.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	status := http.StatusOK
	if len(result.PendingSteps) > 0 {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

// uploadProofIfPresent stores an attached proof document and returns its URL.
// The false return means the response has already been written.
func (h *CancellationHandler) uploadProofIfPresent(c *gin.Context) (string, bool) {
	file, err := c.FormFile("proof")
	if err != nil {
		// No file attached.
		return "", true
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to receive proof document", err.Error())
		return "", false
	}
	defer os.Remove(tmpPath)

	url, err := h.Proofs.UploadProof(c.Request.Context(), tmpPath)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "proof upload failed", err.Error())
		return "", false
	}
	return url, true
}

func actorFromRole(role string) models.CancelActor {
	switch role {
	case "host":
		return models.ActorHost
	case "admin":
		return models.ActorAdmin
	default:
		return models.ActorGuest
	}
}

func parseDateRange(start, end string) (models.DateRange, error) {
	s, err := parseDate(start)
	if err != nil {
		return models.DateRange{}, err
	}
	e, err := parseDate(end)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.DateRange{Start: s, End: e}, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func respondWorkflowError(c *gin.Context, err error) {
	switch cancellation.CodeOf(err) {
	case cancellation.CodeValidation, cancellation.CodeInvalidBookingState:
		utils.JSONError(c, http.StatusUnprocessableEntity, "cancellation rejected", err.Error())
	case cancellation.CodeNotFound:
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case cancellation.CodeAlreadyCancelled:
		utils.JSONError(c, http.StatusConflict, "already cancelled", err.Error())
	case cancellation.CodeUpload:
		utils.JSONError(c, http.StatusBadGateway, "proof upload failed", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "cancellation failed", err.Error())
	}
}
