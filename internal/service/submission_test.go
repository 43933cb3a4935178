package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tenzind12/housing/internal/geocode"
	"github.com/tenzind12/housing/internal/model"
	"github.com/tenzind12/housing/internal/uploader"
)

type fakeGeocoder struct {
	calls  int
	result *geocode.Result
	err    error
}

func (f *fakeGeocoder) Resolve(ctx context.Context, address string) (*geocode.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	urls  []string
	err   error

	block     chan struct{} // when non-nil, UploadAll waits until closed
	started   chan struct{} // when non-nil, closed on first call
	startOnce sync.Once
}

func (f *fakeUploader) UploadAll(ownerID string, images []model.ImageFile) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	return f.urls, f.err
}

func (f *fakeUploader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	calls int
	last  *model.Listing
	id    string
	err   error
}

func (f *fakeStore) Create(ctx context.Context, l *model.Listing) (string, error) {
	f.calls++
	f.last = l
	return f.id, f.err
}

func draft() *model.ListingDraft {
	return &model.ListingDraft{
		Type:               model.TypeRent,
		Name:               "Cozy two-bed flat",
		Bedrooms:           2,
		Bathrooms:          1,
		Address:            "1 Main Street",
		RegularPrice:       1000,
		Images:             []model.ImageFile{{Name: "a.jpg", Data: []byte("a")}},
		GeolocationEnabled: true,
		OwnerID:            "user-1",
	}
}

func newService() (*SubmissionService, *fakeGeocoder, *fakeUploader, *fakeStore) {
	g := &fakeGeocoder{result: &geocode.Result{Lat: 1.5, Lng: 2.5, FormattedAddress: "1 Main St, Springfield"}}
	u := &fakeUploader{urls: []string{"urlA"}}
	s := &fakeStore{id: "listing-1"}
	return NewSubmissionService(g, u, s), g, u, s
}

func TestSubmitSuccess(t *testing.T) {
	svc, g, u, s := newService()

	listing, err := svc.Submit(context.Background(), draft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.calls != 1 || u.calls != 1 || s.calls != 1 {
		t.Errorf("calls geocode=%d upload=%d store=%d, want 1 each", g.calls, u.calls, s.calls)
	}
	if listing.ID != "listing-1" {
		t.Errorf("id = %q, want listing-1", listing.ID)
	}
	if listing.Location != "1 Main St, Springfield" {
		t.Errorf("location = %q, want the formatted address", listing.Location)
	}
	if listing.Geolocation.Lat != 1.5 || listing.Geolocation.Lng != 2.5 {
		t.Errorf("geolocation = %+v", listing.Geolocation)
	}
	if len(listing.ImageURLs) != 1 || listing.ImageURLs[0] != "urlA" {
		t.Errorf("imageUrls = %v", listing.ImageURLs)
	}
}

func TestSubmitManualModeBypassesGeocoder(t *testing.T) {
	svc, g, _, s := newService()

	d := draft()
	d.GeolocationEnabled = false
	d.Latitude = 10
	d.Longitude = 20

	listing, err := svc.Submit(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.calls != 0 {
		t.Errorf("geocoder called %d times in manual mode", g.calls)
	}
	if listing.Geolocation.Lat != 10 || listing.Geolocation.Lng != 20 {
		t.Errorf("geolocation = %+v, want the manual coordinates", listing.Geolocation)
	}
	if listing.Location != d.Address {
		t.Errorf("location = %q, want the raw address", listing.Location)
	}
	if s.calls != 1 {
		t.Errorf("store calls = %d, want 1", s.calls)
	}
	if listing.DiscountedPrice != nil {
		t.Errorf("discountedPrice = %v, want nil", *listing.DiscountedPrice)
	}
}

func TestSubmitValidationFailureDoesNoIO(t *testing.T) {
	svc, g, u, s := newService()

	d := draft()
	d.Images = nil // image count rule, checked first

	_, err := svc.Submit(context.Background(), d)
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if g.calls != 0 || u.calls != 0 || s.calls != 0 {
		t.Errorf("I/O performed after validation failure: geocode=%d upload=%d store=%d", g.calls, u.calls, s.calls)
	}
}

func TestSubmitResolutionFailureStopsBeforeUpload(t *testing.T) {
	svc, g, u, s := newService()
	g.result = nil
	g.err = &geocode.ResolutionError{Reason: geocode.ReasonAddressNotFound}

	_, err := svc.Submit(context.Background(), draft())
	var rErr *geocode.ResolutionError
	if !errors.As(err, &rErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if u.calls != 0 {
		t.Errorf("upload started after geocoding failed")
	}
	if s.calls != 0 {
		t.Errorf("store called after geocoding failed")
	}
}

func TestSubmitUploadFailureStopsBeforePersist(t *testing.T) {
	svc, _, u, s := newService()
	u.urls = nil
	u.err = &uploader.UploadError{Index: 1, Name: "b.jpg", Err: errors.New("network error")}

	_, err := svc.Submit(context.Background(), draft())
	var uErr *uploader.UploadError
	if !errors.As(err, &uErr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if s.calls != 0 {
		t.Errorf("document created despite upload failure")
	}
}

func TestSubmitPersistenceFailure(t *testing.T) {
	svc, _, _, s := newService()
	s.id = ""
	s.err = errors.New("permission denied")

	_, err := svc.Submit(context.Background(), draft())
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestSubmitMissingOwnerShortCircuits(t *testing.T) {
	svc, g, u, s := newService()

	d := draft()
	d.OwnerID = ""

	_, err := svc.Submit(context.Background(), d)
	if !errors.Is(err, ErrMissingOwner) {
		t.Fatalf("expected ErrMissingOwner, got %v", err)
	}
	if g.calls != 0 || u.calls != 0 || s.calls != 0 {
		t.Errorf("network activity after missing owner: geocode=%d upload=%d store=%d", g.calls, u.calls, s.calls)
	}
}

func TestSubmitGuardsAgainstDoubleSubmit(t *testing.T) {
	svc, _, u, _ := newService()
	u.block = make(chan struct{})
	u.started = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), draft())
		firstDone <- err
	}()

	// Wait for the first submission to claim the slot.
	<-u.started

	_, err := svc.Submit(context.Background(), draft())
	if !errors.Is(err, ErrSubmissionInProgress) {
		t.Fatalf("expected ErrSubmissionInProgress, got %v", err)
	}
	if u.callCount() != 1 {
		t.Errorf("second submit reached the uploader")
	}

	close(u.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	// Slot released; a fresh submit goes through.
	u.block = nil
	if _, err := svc.Submit(context.Background(), draft()); err != nil {
		t.Fatalf("resubmit after completion failed: %v", err)
	}
}

func TestSubmitDifferentOwnersDoNotBlockEachOther(t *testing.T) {
	svc, _, u, _ := newService()
	u.block = make(chan struct{})
	u.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), draft())
		done <- err
	}()
	<-u.started

	// A second owner is not blocked by the first owner's in-flight
	// submission; the shared fake uploader would block them here, so the
	// guard is exercised directly.
	if err := svc.begin("user-2"); err != nil {
		t.Fatalf("second owner blocked: %v", err)
	}
	svc.finish("user-2")

	close(u.block)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
}
