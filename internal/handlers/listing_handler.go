package handlers

import (
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"arenda/internal/customerrors"
	"arenda/internal/middleware"
	"arenda/internal/models"
	"arenda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AmenityChoices are the amenities offered as checkboxes on the create form.
var AmenityChoices = []string{"wifi", "parking", "air_conditioning", "kitchen", "washing_machine", "tv", "pool", "sea_view"}

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	service     *services.ListingService
	recentLimit int
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *services.ListingService, recentLimit int) *ListingHandler {
	return &ListingHandler{
		service:     service,
		recentLimit: recentLimit,
	}
}

// RegisterRoutes registers the listing routes with the Fiber app.
func (h *ListingHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/", h.HandleIndex)
	router.Get("/search", h.HandleSearch)
	router.Get("/listing/:id", h.HandleGetListing)
	router.Post("/listing/:id/deactivate", requireAuth, h.HandleDeactivate)
	router.Get("/create_listing", requireAuth, h.ShowCreateListing)
	router.Post("/create_listing", requireAuth, h.HandleCreateListing)
	router.Get("/my_listings", requireAuth, h.HandleMyListings)
}

// HandleIndex shows the most recent listings and the category list.
func (h *ListingHandler) HandleIndex(c *fiber.Ctx) error {
	listings, err := h.service.Recent(h.recentLimit)
	if err != nil {
		return renderError(c, fmt.Errorf("failed to load recent listings: %w", err))
	}
	categories, err := h.service.Categories()
	if err != nil {
		return renderError(c, fmt.Errorf("failed to load categories: %w", err))
	}
	return render(c, fiber.StatusOK, "index", fiber.Map{
		"Title":      "Rentals",
		"Listings":   listings,
		"Categories": categories,
	})
}

// HandleSearch filters active listings by the query parameters.
func (h *ListingHandler) HandleSearch(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		return renderError(c, fmt.Errorf("failed to load categories: %w", err))
	}

	var query services.SearchQuery
	if err := c.QueryParser(&query); err != nil {
		log.Printf("Error parsing search query: %v", err)
	}
	data := fiber.Map{
		"Title":      "Search",
		"Query":      query,
		"Categories": categories,
		"Listings":   []models.Listing{},
	}

	filters, err := query.Filters()
	if err != nil {
		data["Error"] = customerrors.Message(err)
		return render(c, statusFor(err), "search", data)
	}

	listings, err := h.service.Search(filters)
	if err != nil {
		return renderError(c, fmt.Errorf("failed to search listings: %w", err))
	}
	data["Listings"] = listings
	return render(c, fiber.StatusOK, "search", data)
}

// HandleGetListing shows a single listing.
func (h *ListingHandler) HandleGetListing(c *fiber.Ctx) error {
	id, ok := listingID(c)
	if !ok {
		return renderError(c, customerrors.ErrListingNotFound)
	}

	viewerID, _ := middleware.CurrentUserID(c)
	listing, err := h.service.GetListing(viewerID, id)
	if err != nil {
		return renderError(c, err)
	}
	return render(c, fiber.StatusOK, "listing", fiber.Map{
		"Title":   listing.Title,
		"Listing": listing,
		"IsOwner": viewerID != 0 && viewerID == listing.UserID,
	})
}

// ShowCreateListing renders the empty listing form.
func (h *ListingHandler) ShowCreateListing(c *fiber.Ctx) error {
	return h.listingForm(c, fiber.StatusOK, services.ListingForm{}, nil, "")
}

// HandleCreateListing creates a listing from a multipart or urlencoded form.
// Images are read from the "images" file field; amenities from "amenity_<name>" keys.
func (h *ListingHandler) HandleCreateListing(c *fiber.Ctx) error {
	ownerID, _ := middleware.CurrentUserID(c)

	var form services.ListingForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing listing form: %v", err)
		return h.listingForm(c, fiber.StatusBadRequest, form, nil, "invalid request body")
	}

	var keys []string
	var files []*multipart.FileHeader
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		multipartForm, err := c.MultipartForm()
		if err != nil {
			log.Printf("Error reading multipart form: %v", err)
			return h.listingForm(c, fiber.StatusBadRequest, form, nil, "invalid request body")
		}
		for key := range multipartForm.Value {
			keys = append(keys, key)
		}
		files = multipartForm.File["images"]
	} else {
		c.Request().PostArgs().VisitAll(func(key, _ []byte) {
			keys = append(keys, string(key))
		})
	}
	amenities := services.AmenitiesFromKeys(keys)

	listing, err := h.service.CreateListing(ownerID, form, amenities, files)
	if err != nil {
		switch customerrors.KindOf(err) {
		case customerrors.Validation:
			return h.listingForm(c, fiber.StatusBadRequest, form, amenities, customerrors.Message(err))
		default:
			return renderError(c, err)
		}
	}
	return c.Redirect(fmt.Sprintf("/listing/%d", listing.ID), fiber.StatusSeeOther)
}

func (h *ListingHandler) listingForm(c *fiber.Ctx, status int, form services.ListingForm, amenities []string, message string) error {
	categories, err := h.service.Categories()
	if err != nil {
		return renderError(c, fmt.Errorf("failed to load categories: %w", err))
	}

	checked := make(map[string]bool, len(amenities))
	for _, a := range amenities {
		checked[a] = true
	}
	return render(c, status, "create_listing", fiber.Map{
		"Title":          "New listing",
		"Form":           form,
		"Categories":     categories,
		"AmenityChoices": AmenityChoices,
		"Checked":        checked,
		"Error":          message,
	})
}

// HandleMyListings shows every listing of the logged in user, inactive ones included.
func (h *ListingHandler) HandleMyListings(c *fiber.Ctx) error {
	ownerID, _ := middleware.CurrentUserID(c)
	listings, err := h.service.ListByOwner(ownerID)
	if err != nil {
		return renderError(c, err)
	}
	return render(c, fiber.StatusOK, "my_listings", fiber.Map{
		"Title":    "My listings",
		"Listings": listings,
	})
}

// HandleDeactivate hides one of the user's listings from search.
func (h *ListingHandler) HandleDeactivate(c *fiber.Ctx) error {
	id, ok := listingID(c)
	if !ok {
		return renderError(c, customerrors.ErrListingNotFound)
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.service.DeactivateListing(userID, id); err != nil {
		return renderError(c, err)
	}
	return c.Redirect("/my_listings", fiber.StatusSeeOther)
}

func listingID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
