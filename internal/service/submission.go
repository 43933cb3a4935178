package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/tenzind12/housing/internal/geocode"
	"github.com/tenzind12/housing/internal/model"
)

// ErrSubmissionInProgress guards against double-submit: one in-flight
// submission per owner.
var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// ErrMissingOwner means the identity provider gave us no user id; nothing
// is attempted over the network in that case.
var ErrMissingOwner = errors.New("owner id is required")

// PersistenceError wraps a rejected store write.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting listing: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*geocode.Result, error)
}

// Uploader stores a batch of images and returns their URLs in input order.
type Uploader interface {
	UploadAll(ownerID string, images []model.ImageFile) ([]string, error)
}

// ListingStore is the document store boundary: create one listing record,
// get its assigned id back.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) (string, error)
}

// submissionState tracks where in the pipeline one submission attempt is.
type submissionState int

const (
	stateIdle submissionState = iota
	stateValidating
	stateResolving
	stateAssembling
	statePersisting
)

func (s submissionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateValidating:
		return "validating"
	case stateResolving:
		return "resolving"
	case stateAssembling:
		return "assembling"
	case statePersisting:
		return "persisting"
	}
	return "unknown"
}

// SubmissionService runs the listing submission pipeline: validate the
// draft, resolve coordinates, upload photos, assemble the record, persist
// it. Every failure exit leaves nothing persisted so the caller can
// correct the form and resubmit.
type SubmissionService struct {
	geocoder Geocoder
	uploader Uploader
	store    ListingStore

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmissionService(g Geocoder, u Uploader, s ListingStore) *SubmissionService {
	return &SubmissionService{
		geocoder: g,
		uploader: u,
		store:    s,
		inFlight: make(map[string]struct{}),
	}
}

// begin claims the per-owner submission slot.
func (s *SubmissionService) begin(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[ownerID]; busy {
		return ErrSubmissionInProgress
	}
	s.inFlight[ownerID] = struct{}{}
	return nil
}

func (s *SubmissionService) finish(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, ownerID)
}

// Submit runs one submission attempt end to end and returns the persisted
// listing with its assigned id.
func (s *SubmissionService) Submit(ctx context.Context, draft *model.ListingDraft) (*model.Listing, error) {
	if draft.OwnerID == "" {
		return nil, ErrMissingOwner
	}
	if err := s.begin(draft.OwnerID); err != nil {
		return nil, err
	}
	defer s.finish(draft.OwnerID)

	step := func(st submissionState) {
		log.Printf("submission for %s: %s", draft.OwnerID, st)
	}

	step(stateValidating)
	if err := model.ValidateDraft(draft); err != nil {
		return nil, err
	}

	// Geocoding is cheap; resolve it before any upload starts so a bad
	// address never leaves orphaned objects behind.
	step(stateResolving)
	lat, lng := draft.Latitude, draft.Longitude
	location := draft.Address
	if draft.GeolocationEnabled {
		res, err := s.geocoder.Resolve(ctx, draft.Address)
		if err != nil {
			return nil, err
		}
		lat, lng = res.Lat, res.Lng
		location = res.FormattedAddress
	}

	urls, err := s.uploader.UploadAll(draft.OwnerID, draft.Images)
	if err != nil {
		return nil, err
	}

	step(stateAssembling)
	listing := model.AssembleListing(draft, lat, lng, location, urls)

	step(statePersisting)
	id, err := s.store.Create(ctx, listing)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	listing.ID = id

	log.Printf("listing %s created for owner %s", id, draft.OwnerID)
	return listing, nil
}
