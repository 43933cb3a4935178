package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tenzind12/housing/internal/geocode"
	"github.com/tenzind12/housing/internal/model"
	"github.com/tenzind12/housing/internal/repository"
	"github.com/tenzind12/housing/internal/service"
	"github.com/tenzind12/housing/internal/uploader"
)

// maxImageBytes caps a single uploaded photo at 10MB.
const maxImageBytes = 10 * 1024 * 1024

// ListingHandler exposes the listing routes: the submission pipeline plus
// the read-side browse/detail/profile endpoints.
type ListingHandler struct {
	Repo       *repository.ListingRepository
	Submission *service.SubmissionService
}

// RegisterRoutes registers all listing routes. protected requires a valid
// bearer token.
func (h *ListingHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/listings", h.GetListings)
	public.GET("/listings/recent", h.GetRecent)
	public.GET("/listings/:id", h.GetListingByID)

	protected.POST("/listings", h.CreateListing)
	protected.GET("/users/me", h.GetProfile)
	protected.GET("/users/me/listings", h.GetMyListings)
	protected.DELETE("/listings/:id", h.DeleteListing)
}

// GET /api/users/me
// The identity snapshot the form session starts from.
func (h *ListingHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":   c.GetString("user_id"),
		"name": c.GetString("user_name"),
	})
}

// createListingForm carries the multipart form fields. Booleans are typed
// here at the HTTP edge; no "true"/"false" strings reach the model.
type createListingForm struct {
	Type               string  `form:"type" binding:"required,oneof=sale rent"`
	Name               string  `form:"name" binding:"required,min=10,max=32"`
	Bedrooms           int     `form:"bedrooms" binding:"required,min=1,max=50"`
	Bathrooms          int     `form:"bathrooms" binding:"required,min=1,max=50"`
	Parking            bool    `form:"parking"`
	Furnished          bool    `form:"furnished"`
	Offer              bool    `form:"offer"`
	Address            string  `form:"address" binding:"required"`
	RegularPrice       int64   `form:"regularPrice" binding:"required,min=50,max=750000000"`
	DiscountedPrice    int64   `form:"discountedPrice"`
	GeolocationEnabled bool    `form:"geolocationEnabled"`
	Latitude           float64 `form:"latitude"`
	Longitude          float64 `form:"longitude"`
}

// POST /api/listings
// Multipart form: the fields above plus 1-6 "images" file parts.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req createListingForm
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}

	images, err := readImages(form.File["images"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := &model.ListingDraft{
		Type:               model.ListingType(req.Type),
		Name:               req.Name,
		Bedrooms:           req.Bedrooms,
		Bathrooms:          req.Bathrooms,
		Parking:            req.Parking,
		Furnished:          req.Furnished,
		Offer:              req.Offer,
		Address:            req.Address,
		RegularPrice:       req.RegularPrice,
		DiscountedPrice:    req.DiscountedPrice,
		Images:             images,
		GeolocationEnabled: req.GeolocationEnabled,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		OwnerID:            c.GetString("user_id"),
	}

	listing, err := h.Submission.Submit(c.Request.Context(), draft)
	if err != nil {
		status, msg := classifySubmitError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// readImages loads the uploaded file parts, preserving their order.
func readImages(files []*multipart.FileHeader) ([]model.ImageFile, error) {
	images := make([]model.ImageFile, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("cannot open uploaded file " + fh.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, errors.New("cannot read uploaded file " + fh.Filename)
		}
		if len(data) > maxImageBytes {
			return nil, errors.New("image " + fh.Filename + " exceeds 10MB")
		}
		images = append(images, model.ImageFile{Name: fh.Filename, Data: data})
	}
	return images, nil
}

// classifySubmitError maps the pipeline's error taxonomy onto HTTP status
// codes and user-facing messages.
func classifySubmitError(err error) (int, string) {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, vErr.Message
	}

	var rErr *geocode.ResolutionError
	if errors.As(err, &rErr) {
		if rErr.Reason == geocode.ReasonServiceUnavailable {
			return http.StatusBadGateway, "geocoding is unavailable, please enter latitude and longitude manually"
		}
		return http.StatusUnprocessableEntity, "please enter a correct address"
	}

	var uErr *uploader.UploadError
	if errors.As(err, &uErr) {
		return http.StatusBadGateway, "image upload failed"
	}

	switch {
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, "a submission is already in progress"
	case errors.Is(err, service.ErrMissingOwner):
		return http.StatusUnauthorized, "not signed in"
	}

	return http.StatusInternalServerError, "could not save listing"
}

// GET /api/listings?type=rent&offer=true&limit=10&offset=0
func (h *ListingHandler) GetListings(c *gin.Context) {
	filters := map[string]interface{}{}
	if v := c.Query("type"); v == string(model.TypeSale) || v == string(model.TypeRent) {
		filters["type"] = v
	}
	if v := c.Query("offer"); v != "" {
		if offer, err := strconv.ParseBool(v); err == nil {
			filters["offer"] = offer
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Repo.GetFiltered(c.Request.Context(), filters, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/listings/recent?limit=5
func (h *ListingHandler) GetRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	list, err := h.Repo.GetRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	id := c.Param("id")

	listing, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GET /api/users/me/listings
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	list, err := h.Repo.GetByOwner(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// DELETE /api/listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	deleted, err := h.Repo.DeleteOwned(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
