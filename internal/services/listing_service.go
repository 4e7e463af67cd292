package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"

	"arenda/internal/customerrors"
	"arenda/internal/models"
	"arenda/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// AmenityPrefix marks form keys that carry an amenity: "amenity_wifi" -> "wifi".
const AmenityPrefix = "amenity_"

// EventPublisher delivers listing lifecycle events to other systems.
type EventPublisher interface {
	PublishListingEvent(event map[string]interface{}) error
}

// FileStore persists uploaded images.
type FileStore interface {
	Save(files []*multipart.FileHeader) ([]string, error)
	Remove(names []string)
}

// ListingForm is the create-listing form as submitted.
type ListingForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	Price       string `form:"price" validate:"required"`
	Location    string `form:"location" validate:"required,max=200"`
	Address     string `form:"address" validate:"max=300"`
	Rooms       string `form:"rooms"`
	Area        string `form:"area"`
	MaxGuests   string `form:"max_guests"`
	Category    string `form:"category" validate:"required"`
}

func (f *ListingForm) trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = strings.TrimSpace(f.Price)
	f.Location = strings.TrimSpace(f.Location)
	f.Address = strings.TrimSpace(f.Address)
	f.Rooms = strings.TrimSpace(f.Rooms)
	f.Area = strings.TrimSpace(f.Area)
	f.MaxGuests = strings.TrimSpace(f.MaxGuests)
	f.Category = strings.TrimSpace(f.Category)
}

// SearchQuery holds the raw search parameters of the search page.
type SearchQuery struct {
	Q        string `query:"q"`
	Category string `query:"category"`
	MinPrice string `query:"min_price"`
	MaxPrice string `query:"max_price"`
	Location string `query:"location"`
}

// Filters converts the raw parameters. Empty parameters are absent filters;
// malformed numbers are a Validation error rather than being ignored.
func (q SearchQuery) Filters() (repositories.SearchFilters, error) {
	filters := repositories.SearchFilters{Query: q.Q, Location: q.Location}

	if v := strings.TrimSpace(q.Category); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filters, customerrors.Validationf("category %q is not a valid category", v)
		}
		categoryID := uint(id)
		filters.CategoryID = &categoryID
	}

	minPrice, err := optionalInt("min_price", q.MinPrice)
	if err != nil {
		return filters, err
	}
	maxPrice, err := optionalInt("max_price", q.MaxPrice)
	if err != nil {
		return filters, err
	}
	filters.MinPrice = minPrice
	filters.MaxPrice = maxPrice
	return filters, nil
}

// ListingService handles business logic related to listings.
type ListingService struct {
	listingRepo  repositories.ListingRepository
	categoryRepo repositories.CategoryRepository
	files        FileStore
	publisher    EventPublisher // optional
	validate     *validator.Validate
}

// NewListingService creates a new ListingService. publisher may be nil.
func NewListingService(listingRepo repositories.ListingRepository, categoryRepo repositories.CategoryRepository, files FileStore, publisher EventPublisher) *ListingService {
	return &ListingService{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		files:        files,
		publisher:    publisher,
		validate:     newValidator(),
	}
}

// Search returns the active listings matching filters, newest first.
func (s *ListingService) Search(filters repositories.SearchFilters) ([]models.Listing, error) {
	return s.listingRepo.Search(filters)
}

// Recent returns at most limit active listings, newest first.
func (s *ListingService) Recent(limit int) ([]models.Listing, error) {
	return s.listingRepo.Recent(limit)
}

// ListByOwner returns all listings of a user including inactive ones.
func (s *ListingService) ListByOwner(ownerID uint) ([]models.Listing, error) {
	if ownerID == 0 {
		return nil, customerrors.ErrLoginRequired
	}
	return s.listingRepo.ListByOwner(ownerID)
}

// Categories returns every category.
func (s *ListingService) Categories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

// GetListing returns a listing. Inactive listings are only visible to their owner.
func (s *ListingService) GetListing(viewerID, id uint) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive && listing.UserID != viewerID {
		return nil, customerrors.ErrListingNotFound
	}
	return listing, nil
}

// CreateListing validates the form, stores the images and saves the listing.
// Nothing is kept when any step fails.
func (s *ListingService) CreateListing(ownerID uint, form ListingForm, amenities []string, files []*multipart.FileHeader) (*models.Listing, error) {
	if ownerID == 0 {
		return nil, customerrors.ErrLoginRequired
	}

	form.trim()
	if err := s.validate.Struct(form); err != nil {
		return nil, validationError(err)
	}

	listing, err := s.buildListing(ownerID, form, amenities)
	if err != nil {
		return nil, err
	}

	var stored []string
	if s.files != nil && len(files) > 0 {
		stored, err = s.files.Save(files)
		if err != nil {
			return nil, fmt.Errorf("failed to store images: %w", err)
		}
	}
	for i, name := range stored {
		listing.Images = append(listing.Images, models.ListingImage{Position: i, Filename: name})
	}

	if err := s.listingRepo.Create(listing); err != nil {
		if len(stored) > 0 {
			s.files.Remove(stored)
		}
		return nil, err
	}

	s.publish(map[string]interface{}{
		"event":       "listing.created",
		"listing_id":  listing.ID,
		"user_id":     listing.UserID,
		"category_id": listing.CategoryID,
		"price":       listing.Price,
	})
	return listing, nil
}

func (s *ListingService) buildListing(ownerID uint, form ListingForm, amenities []string) (*models.Listing, error) {
	price, err := strconv.Atoi(form.Price)
	if err != nil {
		return nil, customerrors.Validationf("price must be a whole number")
	}
	if price < 0 {
		return nil, customerrors.Validationf("price must not be negative")
	}

	categoryID, err := strconv.ParseUint(form.Category, 10, 32)
	if err != nil {
		return nil, customerrors.Validationf("category %q is not a valid category", form.Category)
	}
	if _, err := s.categoryRepo.GetByID(uint(categoryID)); err != nil {
		if errors.Is(err, customerrors.ErrCategoryNotFound) {
			return nil, customerrors.Validationf("category %d does not exist", categoryID)
		}
		return nil, err
	}

	rooms, err := optionalInt("rooms", form.Rooms)
	if err != nil {
		return nil, err
	}
	maxGuests, err := optionalInt("max_guests", form.MaxGuests)
	if err != nil {
		return nil, err
	}
	area, err := optionalFloat("area", form.Area)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		Title:       form.Title,
		Description: form.Description,
		Price:       price,
		Location:    form.Location,
		Address:     form.Address,
		Rooms:       rooms,
		Area:        area,
		MaxGuests:   maxGuests,
		IsActive:    true,
		UserID:      ownerID,
		CategoryID:  uint(categoryID),
	}
	for _, name := range normalizeAmenities(amenities) {
		if len(name) > 100 {
			return nil, customerrors.Validationf("amenity %q is too long", name)
		}
		listing.Amenities = append(listing.Amenities, models.Amenity{Name: name})
	}
	return listing, nil
}

// DeactivateListing hides a listing from searches. Only its owner may do so.
func (s *ListingService) DeactivateListing(userID, listingID uint) error {
	if userID == 0 {
		return customerrors.ErrLoginRequired
	}

	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		// Matches GetListing: other users cannot see an inactive listing at all.
		if !listing.IsActive {
			return customerrors.ErrListingNotFound
		}
		return customerrors.ErrNotOwner
	}
	if err := s.listingRepo.Deactivate(listingID); err != nil {
		return err
	}

	s.publish(map[string]interface{}{
		"event":      "listing.deactivated",
		"listing_id": listingID,
		"user_id":    userID,
	})
	return nil
}

func (s *ListingService) publish(event map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishListingEvent(event); err != nil {
		log.Printf("Warning: failed to publish %v event for listing %v: %v", event["event"], event["listing_id"], err)
	}
}

// AmenitiesFromKeys extracts amenity names from submitted form keys.
func AmenitiesFromKeys(keys []string) []string {
	var amenities []string
	for _, key := range keys {
		if strings.HasPrefix(key, AmenityPrefix) {
			amenities = append(amenities, strings.TrimPrefix(key, AmenityPrefix))
		}
	}
	return normalizeAmenities(amenities)
}

// normalizeAmenities drops blanks and duplicates and sorts the result.
func normalizeAmenities(amenities []string) []string {
	seen := make(map[string]bool, len(amenities))
	out := []string{}
	for _, a := range amenities {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func optionalInt(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, customerrors.Validationf("%s must be a whole number", field)
	}
	return &n, nil
}

func optionalFloat(field, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, customerrors.Validationf("%s must be a number", field)
	}
	return &f, nil
}
