// Package kyc provides identity document submission and review.
package kyc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/kyc"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Storage keeps uploaded documents under slash-separated keys.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// sniffLen is how much of a document is read to detect its format.
const sniffLen = 3072

// Document is an upload as received from the client. ContentType is what
// the client declared; the stored format is detected from Body.
type Document struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	uow      repository.UnitOfWork
	bus      eventbus.Bus
	storage  Storage
	maxBytes int64
	logger   *slog.Logger
}

// New creates the service. Documents larger than maxBytes are refused.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	storage Storage,
	maxBytes int64,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, storage: storage, maxBytes: maxBytes, logger: logger}
}

// detect reads the start of r and maps its real format to a file
// extension. The returned reader replays the sniffed bytes.
func detect(r io.Reader) (string, string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", "", nil, fmt.Errorf("read document: %w", err)
	}
	head = head[:n]
	mtype := mimetype.Detect(head)
	ext, ok := kyc.AllowedContentTypes[mtype.String()]
	if !ok {
		return "", "", nil, fmt.Errorf("%w: unsupported document type %q", domain.ErrValidation, mtype.String())
	}
	return mtype.String(), ext, io.MultiReader(bytes.NewReader(head), r), nil
}

// Submit stores doc and puts the user's record (new or existing) back in
// review. A replaced document is removed from storage once the new one is
// committed.
func (s *Service) Submit(
	ctx context.Context,
	userID uuid.UUID,
	doc Document,
) (*kyc.Verification, error) {
	log := s.logger.With("context", "Submit", "userID", userID)
	if doc.Size <= 0 || (s.maxBytes > 0 && doc.Size > s.maxBytes) {
		return nil, fmt.Errorf("%w: document must be between 1 and %d bytes", domain.ErrValidation, s.maxBytes)
	}
	body := doc.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(doc.Body, s.maxBytes)
	}
	detected, ext, body, err := detect(body)
	if err != nil {
		log.Warn("Document refused", "declared", doc.ContentType, "error", err)
		return nil, err
	}
	if declared := strings.ToLower(strings.TrimSpace(strings.Split(doc.ContentType, ";")[0])); declared != detected {
		log.Debug("Declared content type differs", "declared", declared, "detected", detected)
	}
	u, err := s.uow.UserRepository().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := path.Join("kyc", userID.String(), uuid.NewString()+ext)
	if err := s.storage.Save(ctx, key, body); err != nil {
		log.Error("Storing document failed", "error", err)
		return nil, fmt.Errorf("store document: %w", err)
	}
	var (
		v        *kyc.Verification
		previous string
	)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		existing, err := uow.KYCRepository().GetByUser(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			previous = existing.Document
		}
		v = kyc.Submit(existing, userID, key)
		return uow.KYCRepository().Save(ctx, v)
	})
	if err != nil {
		s.remove(ctx, log, key)
		return nil, err
	}
	if previous != "" && previous != key {
		s.remove(ctx, log, previous)
	}
	log.Info("KYC document submitted", "verificationID", v.ID, "contentType", detected)
	eventbus.Publish(ctx, s.bus, s.logger, events.KYCSubmitted{
		Meta:           events.NewMeta(userID, u.Username),
		VerificationID: v.ID,
	})
	return v, nil
}

func (s *Service) remove(ctx context.Context, log *slog.Logger, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		log.Warn("Removing document failed", "key", key, "error", err)
	}
}

// Get returns the user's record or domain.ErrNotFound before any
// submission.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*kyc.Verification, error) {
	return s.uow.KYCRepository().GetByUser(ctx, userID)
}

// List returns records in status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, status kyc.Status) ([]*kyc.Verification, error) {
	return s.uow.KYCRepository().List(ctx, status)
}

// OpenDocument streams the stored document of record id.
func (s *Service) OpenDocument(ctx context.Context, id uuid.UUID) (io.ReadCloser, *kyc.Verification, error) {
	v, err := s.uow.KYCRepository().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Open(ctx, v.Document)
	if err != nil {
		return nil, nil, err
	}
	return rc, v, nil
}

func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*kyc.Verification, error) {
	return s.decide(ctx, id, "approved", func(v *kyc.Verification) error { return v.Approve() })
}

// Reject refuses the document with a reason shown to the user.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*kyc.Verification, error) {
	return s.decide(ctx, id, "rejected", func(v *kyc.Verification) error { return v.Reject(reason) })
}

func (s *Service) decide(
	ctx context.Context,
	id uuid.UUID,
	outcome string,
	fn func(v *kyc.Verification) error,
) (*kyc.Verification, error) {
	var v *kyc.Verification
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if v, err = uow.KYCRepository().Get(ctx, id); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
		return uow.KYCRepository().Save(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("KYC decided", "verificationID", id, "outcome", outcome)
	return v, nil
}
