package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/walkin-pos/internal/middleware"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/internal/services"
	"github.com/smarttransit/walkin-pos/internal/session"
	"github.com/smarttransit/walkin-pos/internal/utils"
	"github.com/smarttransit/walkin-pos/internal/wizard"
	"github.com/smarttransit/walkin-pos/pkg/ticket"
)

const (
	dateLayout = "2006-01-02"

	// ledgerTimeout bounds sales ledger writes after a submit
	ledgerTimeout = 5 * time.Second
)

// WizardFactory builds a wizard that calls the booking service as auth.
// The returned refresher receives renewed tokens for the session; it may be nil.
type WizardFactory func(auth models.AuthContext) (*wizard.Wizard, session.AuthRefresher)

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	State   *wizard.Snapshot  `json:"state,omitempty"`
}

// SessionResponse describes a walk-in session and its wizard state
type SessionResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	State     wizard.Snapshot `json:"state"`
}

// ChooseScheduleRequest selects a departure
type ChooseScheduleRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required"`
}

// ChooseSeatRequest selects the passenger's seat
type ChooseSeatRequest struct {
	SeatNumber *int `json:"seat_number" binding:"required"`
}

// SubmitRequest carries the passenger and payment step
type SubmitRequest struct {
	PassengerName  string `json:"passenger_name"`
	PassengerPhone string `json:"passenger_phone"`
	PassengerEmail string `json:"passenger_email"`
	PaymentMethod  string `json:"payment_method"`
}

// SubmitResponse is returned for a confirmed cash booking
type SubmitResponse struct {
	SessionID uuid.UUID               `json:"session_id"`
	Booking   models.CompletedBooking `json:"booking"`
	TicketURL string                  `json:"ticket_url"`
	State     wizard.Snapshot         `json:"state"`
}

// RedirectResponse is returned when the passenger must complete a digital checkout
type RedirectResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// WalkInHandler serves the walk-in counter booking flow
type WalkInHandler struct {
	store     *session.Store
	newWizard WizardFactory
	renderer  ticket.Renderer
	sales     *services.SalesService
	logger    *logrus.Logger
	now       func() time.Time
}

// NewWalkInHandler creates a new walk-in handler
func NewWalkInHandler(
	store *session.Store,
	newWizard WizardFactory,
	renderer ticket.Renderer,
	sales *services.SalesService,
	logger *logrus.Logger,
) *WalkInHandler {
	return &WalkInHandler{
		store:     store,
		newWizard: newWizard,
		renderer:  renderer,
		sales:     sales,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRoutes mounts the walk-in routes on rg
func (h *WalkInHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.CreateSession)
	rg.GET("/sessions/:id", h.GetSession)
	rg.DELETE("/sessions/:id", h.DeleteSession)
	rg.GET("/sessions/:id/schedules", h.ReloadSchedules)
	rg.POST("/sessions/:id/schedule", h.ChooseSchedule)
	rg.POST("/sessions/:id/seat", h.ChooseSeat)
	rg.POST("/sessions/:id/submit", h.Submit)
	rg.POST("/sessions/:id/new-booking", h.NewBooking)
	rg.GET("/sessions/:id/ticket", h.GetTicket)
	rg.GET("/sales/summary", h.GetSalesSummary)
}

// CreateSession opens a wizard for the caller and loads the day's schedules
// @Summary Start a walk-in booking
// @Tags Walk-in
// @Produce json
// @Param date query string false "Departure date (YYYY-MM-DD)"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /walk-in/sessions [post]
func (h *WalkInHandler) CreateSession(c *gin.Context) {
	auth := middleware.MustGetAuthContext(c)

	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	w, creds := h.newWizard(auth)
	sess := h.store.Create(auth, w, creds)

	if _, err := w.LoadSchedules(c.Request.Context(), filter); err != nil {
		_ = h.store.Delete(sess.ID, auth.UserID)
		h.writeWizardError(c, nil, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"session_id":  sess.ID,
		"ticketer_id": auth.UserID,
		"date":        filter.Date,
	}).Info("Walk-in session opened")

	c.JSON(http.StatusCreated, SessionResponse{SessionID: sess.ID, State: w.Snapshot()})
}

// GetSession returns the current wizard step and draft
func (h *WalkInHandler) GetSession(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sess.ID, State: sess.Wizard.Snapshot()})
}

// DeleteSession abandons the session
func (h *WalkInHandler) DeleteSession(c *gin.Context) {
	auth := middleware.MustGetAuthContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err == nil {
		err = h.store.Delete(id, auth.UserID)
	}
	if err != nil {
		h.writeSessionNotFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReloadSchedules refreshes the schedule list, optionally for another date
func (h *WalkInHandler) ReloadSchedules(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	if _, err := sess.Wizard.LoadSchedules(c.Request.Context(), filter); err != nil {
		h.writeWizardError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sess.ID, State: sess.Wizard.Snapshot()})
}

// ChooseSchedule selects a departure and loads its seat map
// @Summary Choose schedule
// @Tags Walk-in
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body ChooseScheduleRequest true "Schedule"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /walk-in/sessions/{id}/schedule [post]
func (h *WalkInHandler) ChooseSchedule(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req ChooseScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	if _, err := sess.Wizard.ChooseSchedule(c.Request.Context(), req.ScheduleID); err != nil {
		h.writeWizardError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sess.ID, State: sess.Wizard.Snapshot()})
}

// ChooseSeat records the passenger's seat
func (h *WalkInHandler) ChooseSeat(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req ChooseSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	if _, err := sess.Wizard.ChooseSeat(*req.SeatNumber); err != nil {
		h.writeWizardError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sess.ID, State: sess.Wizard.Snapshot()})
}

// Submit books the seat (cash) or starts a digital checkout
// @Summary Submit passenger and payment
// @Tags Walk-in
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SubmitRequest true "Passenger and payment"
// @Success 201 {object} SubmitResponse "Cash booking confirmed"
// @Success 200 {object} RedirectResponse "Digital checkout started"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /walk-in/sessions/{id}/submit [post]
func (h *WalkInHandler) Submit(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	// the booking may be created even if the terminal disconnects; the
	// booking client timeout bounds the call
	ctx := context.WithoutCancel(c.Request.Context())
	outcome, err := sess.Wizard.Submit(ctx, wizard.PassengerInfo{
		Name:          req.PassengerName,
		Phone:         req.PassengerPhone,
		Email:         req.PassengerEmail,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.writeWizardError(c, sess, err)
		return
	}

	ledgerCtx, cancel := context.WithTimeout(ctx, ledgerTimeout)
	defer cancel()

	sc := services.SaleContext{
		SessionID:  sess.ID,
		TicketerID: sess.OwnerID,
		IPAddress:  utils.GetRealIP(c),
		UserAgent:  utils.GetUserAgent(c),
	}

	if outcome.CheckoutURL != "" {
		h.sales.RecordPaymentInitiated(ledgerCtx, sc, outcome.Draft, outcome.CheckoutURL)
		// completion happens out-of-band at the payment provider
		_ = h.store.Delete(sess.ID, sess.OwnerID)
		c.JSON(http.StatusOK, RedirectResponse{RedirectURL: outcome.CheckoutURL})
		return
	}

	h.sales.RecordConfirmed(ledgerCtx, sc, *outcome.Booking)
	c.JSON(http.StatusCreated, SubmitResponse{
		SessionID: sess.ID,
		Booking:   *outcome.Booking,
		TicketURL: fmt.Sprintf("/api/v1/walk-in/sessions/%s/ticket", sess.ID),
		State:     sess.Wizard.Snapshot(),
	})
}

// NewBooking clears a confirmed booking and returns to schedule selection
func (h *WalkInHandler) NewBooking(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	if _, err := sess.Wizard.NewBooking(); err != nil {
		h.writeWizardError(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sess.ID, State: sess.Wizard.Snapshot()})
}

// GetTicket returns the confirmed booking's ticket as a PDF. A ticket that
// failed to render at confirmation is rendered again.
func (h *WalkInHandler) GetTicket(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}

	booking, pdf, err := sess.Wizard.Ticket()
	if err != nil {
		h.writeWizardError(c, sess, err)
		return
	}

	if len(pdf) == 0 {
		pdf, err = h.renderer.Render(booking)
		if err != nil {
			h.logger.WithError(err).WithField("reference_code", booking.ReferenceCode).Error("Failed to render ticket")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to render ticket",
				Code:    "TICKET_RENDER_FAILED",
			})
			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, ticket.Filename(booking)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetSalesSummary returns the caller's walk-in totals for a day
// @Summary Ticketer shift summary
// @Tags Walk-in
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} models.SalesSummary
// @Failure 503 {object} ErrorResponse
// @Router /walk-in/sales/summary [get]
func (h *WalkInHandler) GetSalesSummary(c *gin.Context) {
	auth := middleware.MustGetAuthContext(c)

	day := h.now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, day.Location())
		if err != nil {
			h.writeInvalidDate(c)
			return
		}
		day = parsed
	}

	summary, err := h.sales.Summary(c.Request.Context(), auth.UserID, day)
	if errors.Is(err, services.ErrLedgerDisabled) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "Sales ledger is not configured",
			Code:    "LEDGER_DISABLED",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("ticketer_id", auth.UserID).Error("Failed to summarize sales")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load sales summary",
			Code:    "INTERNAL_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *WalkInHandler) loadSession(c *gin.Context) (*session.Session, bool) {
	auth := middleware.MustGetAuthContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeSessionNotFound(c)
		return nil, false
	}

	sess, err := h.store.Get(id, auth.UserID)
	if err != nil {
		h.writeSessionNotFound(c)
		return nil, false
	}

	h.store.Touch(id, auth)
	return sess, true
}

func (h *WalkInHandler) parseFilter(c *gin.Context) (models.ScheduleFilter, bool) {
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			h.writeInvalidDate(c)
			return models.ScheduleFilter{}, false
		}
	}
	return models.ScheduleFilter{Date: date}, true
}

func (h *WalkInHandler) writeWizardError(c *gin.Context, sess *session.Session, err error) {
	resp := ErrorResponse{}
	status := http.StatusInternalServerError

	var validationErr *wizard.ValidationError
	var fetchErr *wizard.FetchError
	var submissionErr *wizard.SubmissionError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		resp.Error = "validation_failed"
		resp.Message = "Please correct the highlighted fields"
		resp.Code = "VALIDATION_FAILED"
		resp.Fields = validationErr.Fields
	case errors.As(err, &fetchErr):
		status = http.StatusBadGateway
		resp.Error = "fetch_failed"
		resp.Message = fetchErr.Message
		resp.Code = "FETCH_FAILED"
	case errors.As(err, &submissionErr):
		status = http.StatusUnprocessableEntity
		resp.Error = "submission_failed"
		resp.Message = submissionErr.Message
		resp.Code = "SUBMISSION_FAILED"
		if submissionErr.SeatTaken {
			status = http.StatusConflict
			resp.Error = "seat_unavailable"
			resp.Code = "SEAT_ALREADY_BOOKED"
		}
	case errors.Is(err, wizard.ErrBusy):
		status = http.StatusConflict
		resp.Error = "conflict"
		resp.Message = err.Error()
		resp.Code = "REQUEST_IN_PROGRESS"
	case errors.Is(err, wizard.ErrInvalidTransition):
		status = http.StatusConflict
		resp.Error = "conflict"
		resp.Message = err.Error()
		resp.Code = "INVALID_STEP"
	default:
		resp.Error = "internal_error"
		resp.Message = "Unexpected error"
		resp.Code = "INTERNAL_ERROR"
	}

	entry := h.logger.WithError(err).WithField("code", resp.Code)
	if sess != nil {
		snap := sess.Wizard.Snapshot()
		resp.State = &snap
		entry = entry.WithField("session_id", sess.ID)
	}
	if status >= http.StatusInternalServerError {
		entry.Error("Walk-in request failed")
	} else {
		entry.Info("Walk-in request rejected")
	}

	c.JSON(status, resp)
}

func (h *WalkInHandler) writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
		Code:    "INVALID_REQUEST",
	})
}

func (h *WalkInHandler) writeInvalidDate(c *gin.Context) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: "date must be formatted as YYYY-MM-DD",
		Code:    "INVALID_DATE",
	})
}

func (h *WalkInHandler) writeSessionNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: session.ErrNotFound.Error(),
		Code:    "SESSION_NOT_FOUND",
	})
}
