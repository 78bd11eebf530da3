// Package service holds the booking engine and the class catalog. It owns
// transactions and translates repository errors into *Error values.
package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/database"
	"github.com/iliyamo/pilates-studio/internal/metrics"
	"github.com/iliyamo/pilates-studio/internal/model"
	"github.com/iliyamo/pilates-studio/internal/queue"
	"github.com/iliyamo/pilates-studio/internal/repository"
)

// EventPublisher receives booking events after the change is committed.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	PublishBookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingService creates and cancels bookings. Capacity and the one
// confirmed booking per user and class rule are checked inside a single
// transaction that holds the class lock; the unique index on confirmed
// bookings backs the duplicate rule up.
type BookingService struct {
	db       *database.DB
	classes  *repository.ClassRepo
	bookings *repository.BookingRepo
	events   EventPublisher
	logger   *zap.Logger
}

func NewBookingService(db *database.DB, classes *repository.ClassRepo, bookings *repository.BookingRepo, events EventPublisher, logger *zap.Logger) *BookingService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &BookingService{db: db, classes: classes, bookings: bookings, events: events, logger: logger}
}

// CreateBooking reserves a spot in classID for userID.
func (s *BookingService) CreateBooking(ctx context.Context, userID, classID uint64, notes *string) (model.BookingView, error) {
	notes, err := normalizeNotes(notes)
	if err != nil {
		return model.BookingView{}, err
	}

	tx, err := s.db.BeginTx(ctx, s.db.TxOptions())
	if err != nil {
		return model.BookingView{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	class, err := s.classes.LockActiveTx(ctx, tx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			metrics.IncBookingRejected("class_not_found")
			return model.BookingView{}, ErrClassNotFound
		}
		return model.BookingView{}, err
	}

	confirmed, err := s.bookings.CountConfirmedTx(ctx, tx, classID)
	if err != nil {
		return model.BookingView{}, err
	}
	if confirmed >= class.Capacity {
		metrics.IncBookingRejected("class_full")
		return model.BookingView{}, ErrClassFull
	}

	booked, err := s.bookings.HasConfirmedTx(ctx, tx, userID, classID)
	if err != nil {
		return model.BookingView{}, err
	}
	if booked {
		metrics.IncBookingRejected("already_booked")
		return model.BookingView{}, ErrAlreadyBooked
	}

	b := &model.Booking{UserID: userID, ClassID: classID, Notes: notes}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateBooking) {
			metrics.IncBookingRejected("already_booked")
			return model.BookingView{}, ErrAlreadyBooked
		}
		return model.BookingView{}, err
	}

	view, err := s.bookings.GetViewTx(ctx, tx, b.ID)
	if err != nil {
		return model.BookingView{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.BookingView{}, err
	}
	committed = true

	metrics.IncBookingCreated()
	s.logger.Info("booking confirmed",
		zap.Uint64("booking_id", view.ID),
		zap.Uint64("user_id", userID),
		zap.Uint64("class_id", classID),
		zap.Int("available_spots", view.Class.AvailableSpots))

	s.publish(ctx, queue.BookingConfirmedQueue, func(ctx context.Context) error {
		return s.events.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
			BookingID:      view.ID,
			UserID:         userID,
			ClassID:        classID,
			ClassName:      view.Class.Name,
			InstructorName: view.Class.InstructorName,
			StudioName:     view.Class.StudioName,
			StartsAt:       view.Class.StartTime.UTC().Format(time.RFC3339),
			EndsAt:         view.Class.EndTime.UTC().Format(time.RFC3339),
			AvailableSpots: view.Class.AvailableSpots,
			PriceCents:     view.Class.PriceCents,
			ConfirmedAt:    view.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
	return view, nil
}

// CancelBooking moves the user's CONFIRMED booking to CANCELLED. Missing
// bookings and bookings of other users yield ErrBookingNotFound; bookings
// already in a terminal state yield ErrNotCancellable.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uint64) error {
	ok, err := s.bookings.CancelConfirmed(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if !ok {
		b, err := s.bookings.GetForUser(ctx, bookingID, userID)
		if errors.Is(err, repository.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		s.logger.Debug("cancel rejected", zap.Uint64("booking_id", b.ID), zap.String("status", b.Status))
		return ErrNotCancellable
	}

	metrics.IncBookingCancelled()
	view, err := s.bookings.GetViewForUser(ctx, bookingID, userID)
	if err != nil {
		// the cancellation is committed; only the event is lost
		s.logger.Error("load cancelled booking", zap.Uint64("booking_id", bookingID), zap.Error(err))
		return nil
	}
	s.logger.Info("booking cancelled",
		zap.Uint64("booking_id", bookingID),
		zap.Uint64("user_id", userID),
		zap.Uint64("class_id", view.Class.ID))

	s.publish(ctx, queue.BookingCancelledQueue, func(ctx context.Context) error {
		return s.events.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
			BookingID:      bookingID,
			UserID:         userID,
			ClassID:        view.Class.ID,
			ClassName:      view.Class.Name,
			StartsAt:       view.Class.StartTime.UTC().Format(time.RFC3339),
			AvailableSpots: view.Class.AvailableSpots,
			CancelledAt:    view.UpdatedAt.UTC().Format(time.RFC3339),
		})
	})
	return nil
}

// GetUserBookings lists every booking of the user, most recent class first.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uint64) ([]model.BookingView, error) {
	return s.bookings.ListViewsByUser(ctx, userID)
}

// GetBookingByID returns the booking only when it belongs to userID.
func (s *BookingService) GetBookingByID(ctx context.Context, bookingID, userID uint64) (model.BookingView, error) {
	v, err := s.bookings.GetViewForUser(ctx, bookingID, userID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return model.BookingView{}, ErrBookingNotFound
	}
	return v, err
}

// publish runs fn detached from the request's cancellation. Failures are
// logged and counted; the booking change is already committed.
func (s *BookingService) publish(ctx context.Context, routingKey string, fn func(context.Context) error) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := fn(pctx); err != nil {
		metrics.IncEventPublishFailed(routingKey)
		s.logger.Warn("publish event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func normalizeNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	n := strings.TrimSpace(*notes)
	if n == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(n) > model.MaxNotesLen {
		return nil, Validation("notes must be at most 500 characters")
	}
	return &n, nil
}
