package booking

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"roombooking/internal/domain"
	"roombooking/internal/middleware"
	"roombooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking reserves a room for the caller.
// @Summary	Create booking
// @Tags		Bookings
// @Security	BearerAuth
// @Param		request	body	CreateBookingRequest	true	"room_id, start_time, end_time, title, status"
// @Success	201	{object}	map[string]interface{}
// @Failure	400	{object}	map[string]interface{}	"INVALID_RANGE, DURATION_EXCEEDED, INVALID_STATUS"
// @Failure	409	{object}	map[string]interface{}	"SLOT_CONFLICT"
// @Router		/bookings [POST]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.CreateBooking(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	notice := gin.H{"sent": res.NotificationErr == nil}
	if res.NotificationErr != nil {
		notice["error"] = "Booking saved but the confirmation email could not be sent"
	}

	response.Success(c, http.StatusCreated, gin.H{
		"booking":      res.Booking,
		"notification": notice,
	})
}

// GetMyBookings lists the caller's bookings with their current status.
// @Router		/bookings/my [GET]
func (h *Handler) GetMyBookings(c *gin.Context) {
	rows, err := h.service.ListMine(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

// ListBookings is the admin view over every booking.
// @Router		/bookings [GET]
func (h *Handler) ListBookings(c *gin.Context) {
	f, ok := parseListFilter(c)
	if !ok {
		return
	}

	rows, err := h.service.ListAll(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": rows})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// UpdateStatus lets an admin approve, reject or cancel a booking.
// @Router		/bookings/{id}/status [PATCH]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(c, ErrInvalidStatus)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), id, status, middleware.ActorFrom(c).Role)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// UpdateBooking edits the time range or title.
// @Router		/bookings/{id} [PATCH]
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.UpdateBookingDetails(c.Request.Context(), id, middleware.ActorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// CancelBooking cancels the booking if the cancellation window is still open.
// @Router		/bookings/{id} [DELETE]
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": domain.StatusCancelled})
}

// GetDayView returns the occupied slots of a room on one date.
// @Param		room_id	query	int		true	"Room ID"
// @Param		date	query	string	true	"YYYY-MM-DD"
// @Router		/bookings/available [GET]
func (h *Handler) GetDayView(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Query("room_id"), 10, 64)
	if err != nil || roomID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_id is required")
		return
	}
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date is required (YYYY-MM-DD)")
		return
	}

	view, err := h.service.DayView(c.Request.Context(), roomID, date)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Export streams the filtered bookings as an XLSX file.
// @Router		/bookings/export [GET]
func (h *Handler) Export(c *gin.Context) {
	f, ok := parseListFilter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportXLSX(c.Request.Context(), f, &buf); err != nil {
		writeError(c, err)
		return
	}

	name := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

// parseListFilter reads status, room_id, user_id, from and to (RFC 3339).
func parseListFilter(c *gin.Context) (ListFilter, bool) {
	var f ListFilter

	if raw := c.Query("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			writeError(c, ErrInvalidStatus)
			return f, false
		}
		f.Status = st
	}

	for key, dst := range map[string]*int64{"room_id": &f.RoomID, "user_id": &f.UserID} {
		if raw := c.Query(key); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+key)
				return f, false
			}
			*dst = v
		}
	}

	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if raw := c.Query(key); raw != "" {
			v, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+key+", expected RFC 3339")
				return f, false
			}
			*dst = &v
		}
	}

	return f, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		response.Error(c, http.StatusBadRequest, "INVALID_RANGE", "End time must be after start time")
	case errors.Is(err, ErrDurationExceeded):
		response.Error(c, http.StatusBadRequest, "DURATION_EXCEEDED", "Booking is longer than the allowed maximum")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Status is not allowed here")
	case errors.Is(err, ErrSlotConflict):
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", "Room is already booked for the selected time")
	case errors.Is(err, ErrImmutableStatus):
		response.Error(c, http.StatusConflict, "IMMUTABLE_STATUS", "Booking status can no longer be changed")
	case errors.Is(err, ErrTooLateToCancel):
		response.Error(c, http.StatusConflict, "TOO_LATE_TO_CANCEL", "Booking can no longer be cancelled")
	case errors.Is(err, ErrNotCancellable):
		response.Error(c, http.StatusConflict, "NOT_CANCELLABLE", "Booking is already cancelled or rejected")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You cannot modify this booking")
	case errors.Is(err, ErrRoomNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Room not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong, please retry")
	}
}
