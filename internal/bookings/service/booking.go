package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "lilo/internal/bookings/errors"
	"lilo/internal/bookings/events"
	"lilo/internal/bookings/repository"
	"lilo/internal/bookings/validator"
	"lilo/pkg/config"
	apperrors "lilo/pkg/errors"
	"lilo/pkg/model"
	"lilo/pkg/sanitizer"
	"lilo/pkg/validation"
)

type BookingService interface {
	// Create admits a booking request. Checks run in order: date window,
	// blocked date, slot boundary, then the atomic slot claim.
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) ([]model.StatusCount, error)
}

// SlotResolver maps a requested (date, time) onto a generated slot.
type SlotResolver interface {
	FindSlot(ctx context.Context, date, clock string) (int, error)
}

type DateGuard interface {
	Check(date string) (string, error)
	Elapsed(date, clock string) bool
}

type SlotInvalidator interface {
	InvalidateDate(ctx context.Context, date string)
}

type bookingService struct {
	repo      repository.BookingRepository
	slots     SlotResolver
	window    DateGuard
	cache     SlotInvalidator
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	slots SlotResolver,
	window DateGuard,
	cache SlotInvalidator,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		slots:     slots,
		window:    window,
		cache:     cache,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, validationError("Booking validation failed", err)
	}

	date, err := s.window.Check(req.RequestedDate)
	if err != nil {
		return nil, err
	}
	req.RequestedDate = date

	duration, err := s.slots.FindSlot(ctx, req.RequestedDate, req.RequestedTime)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			s.cfg.Log.Error("Failed to resolve slot", "date", req.RequestedDate, "time", req.RequestedTime, "error", err)
		}
		return nil, err
	}
	if s.window.Elapsed(req.RequestedDate, req.RequestedTime) {
		return nil, apperrors.Validation("Requested time has already passed",
			validation.Field("requested_time", "requested_time has already started").Details())
	}

	booking := req.ToBooking()
	booking.DurationMinutes = duration

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			s.cfg.Log.Info("Slot already taken",
				"date", booking.RequestedDate,
				"time", booking.RequestedTime,
			)
			return nil, apperrors.SlotConflict(booking.RequestedDate, booking.RequestedTime)
		}
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}
	s.cache.InvalidateDate(ctx, booking.RequestedDate)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"requested_date", booking.RequestedDate,
		"requested_time", booking.RequestedTime,
		"duration_minutes", booking.DurationMinutes,
	)

	s.publish(ctx, model.BookingEvent{
		Type:       model.EventBookingCreated,
		Booking:    *booking,
		OccurredAt: booking.CreatedAt,
	})
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.InvalidInput("Invalid status filter: " + string(filter.Status))
	}
	if filter.Date != "" {
		if _, err := model.ParseDate(filter.Date, s.cfg.Location()); err != nil {
			return nil, 0, apperrors.InvalidInput("Invalid date filter: " + filter.Date)
		}
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Status update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid status update", err)
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := booking.Status
	if !previous.CanTransitionTo(update.Status) {
		return nil, apperrors.Conflict("Invalid status transition").WithDetails(map[string]any{
			"from": previous,
			"to":   update.Status,
		})
	}

	applyStatus(booking, update, time.Now().UTC().Truncate(time.Millisecond))

	if err := s.repo.UpdateStatus(ctx, booking, previous); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Booking status was changed by another request, reload and retry")
		}
		return nil, mapRepoError(err, id, "Failed to update booking status")
	}
	if !booking.Status.Occupies() {
		s.cache.InvalidateDate(ctx, booking.RequestedDate)
	}

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"from", previous,
		"to", booking.Status,
	)

	s.publish(ctx, model.BookingEvent{
		Type:           model.EventBookingStatusChanged,
		Booking:        *booking,
		PreviousStatus: previous,
		OccurredAt:     booking.UpdatedAt,
	})
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err, id, "Failed to delete booking")
	}
	s.cache.InvalidateDate(ctx, deleted.RequestedDate)

	s.cfg.Log.Info("Booking purged", "id", id, "requested_date", deleted.RequestedDate, "status", deleted.Status)
	return nil
}

func (s *bookingService) Summary(ctx context.Context) ([]model.StatusCount, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to summarize bookings", "error", err)
		return nil, apperrors.Internal("Failed to summarize bookings", err)
	}
	return counts, nil
}

// publish hands the event off without blocking or failing the request.
func (s *bookingService) publish(ctx context.Context, event model.BookingEvent) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.NotificationTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, event); err != nil {
			s.cfg.Log.Warn("Failed to publish booking event",
				"event_type", event.Type,
				"booking_id", event.Booking.ID,
				"error", err,
			)
		}
	}()
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.FullName = sanitizer.NormalizeName(req.FullName)
	req.BusinessName = sanitizer.TrimAndNormalize(req.BusinessName)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if phone := sanitizer.SanitizePhone(req.Phone); phone != "" {
		req.Phone = phone
	}
	req.ContactMethod = sanitizer.TrimAndNormalize(req.ContactMethod)
	req.State = sanitizer.NormalizeState(req.State)
	req.City = sanitizer.TrimAndNormalize(req.City)
	req.ServicesRequested = sanitizer.SanitizeSlice(req.ServicesRequested, sanitizer.NormalizeService)
	req.Notes = sanitizer.TrimAndNormalize(req.Notes)
	req.HowHeard = sanitizer.TrimAndNormalize(req.HowHeard)
	if len(req.FileURLs) > 0 {
		req.FileURLs = sanitizer.SanitizeSlice(req.FileURLs, sanitizer.SanitizeURL)
	}
	req.RequestedDate = sanitizer.TrimAndNormalize(req.RequestedDate)
	req.RequestedTime = sanitizer.TrimAndNormalize(req.RequestedTime)
}

func applyStatus(booking *model.Booking, update *model.StatusUpdate, now time.Time) {
	booking.Status = update.Status
	if update.AdminNotes != nil {
		booking.AdminNotes = sanitizer.TrimAndNormalize(*update.AdminNotes)
	}

	switch update.Status {
	case model.StatusConfirmed:
		booking.ConfirmedAt = &now
	case model.StatusCompleted:
		booking.CompletedAt = &now
	case model.StatusCancelled:
		booking.CancelledAt = &now
		booking.CancellationReason = sanitizer.TrimAndNormalize(update.CancellationReason)
	}
}

func mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal(message, err)
}

func validationError(message string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
