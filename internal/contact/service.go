package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/store"
)

// Recorder persists enquiries.
type Recorder interface {
	InsertEnquiry(ctx context.Context, e store.Enquiry) error
}

// Queue hands enquiries to downstream consumers.
type Queue interface {
	Publish(ctx context.Context, v any) error
}

// Enquiry is an accepted submission, as published to the queue.
type Enquiry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Subject      string    `json:"subject"`
	SubjectLabel string    `json:"subject_label"`
	Message      string    `json:"message"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrNotDelivered = errors.New("enquiry could not be delivered")

type Service struct {
	Store Recorder
	Queue Queue
	Log   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService accepts nil store or queue; at least one should be set for
// enquiries to go anywhere beyond the log.
func NewService(rec Recorder, q Queue, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Store: rec,
		Queue: q,
		Log:   log,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Submit validates, stores and publishes an enquiry. A queue failure after
// a successful store is logged only. With neither sink succeeding the
// enquiry is rejected with ErrNotDelivered.
func (s *Service) Submit(ctx context.Context, req Request, remoteAddr string) (*Enquiry, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	e := &Enquiry{
		ID:           s.newID(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Subject:      req.Subject,
		SubjectLabel: Subjects[req.Subject],
		Message:      req.Message,
		RemoteAddr:   remoteAddr,
		CreatedAt:    s.now().UTC(),
	}
	log := s.Log.With(zap.String("enquiry_id", e.ID), zap.String("subject", e.Subject))

	stored := false
	if s.Store != nil {
		if err := s.Store.InsertEnquiry(ctx, store.Enquiry{
			ID:         e.ID,
			Name:       e.Name,
			Email:      e.Email,
			Phone:      e.Phone,
			Subject:    e.Subject,
			Message:    e.Message,
			RemoteAddr: e.RemoteAddr,
			CreatedAt:  e.CreatedAt,
		}); err != nil {
			log.Error("store enquiry failed", zap.Error(err))
		} else {
			stored = true
		}
	}

	published := false
	if s.Queue != nil {
		if err := s.Queue.Publish(ctx, e); err != nil {
			log.Warn("publish enquiry failed", zap.Error(err))
		} else {
			published = true
		}
	}

	if s.Store == nil && s.Queue == nil {
		log.Info("enquiry received", zap.String("email", e.Email))
		return e, nil
	}
	if !stored && !published {
		return nil, fmt.Errorf("%w: %s", ErrNotDelivered, e.ID)
	}
	log.Info("enquiry accepted", zap.Bool("stored", stored), zap.Bool("published", published))
	return e, nil
}
