package repositories

import "arenda/internal/models"

// SearchFilters narrows a listing search. Nil or empty fields do not constrain.
type SearchFilters struct {
	Query      string // substring of title, description or location
	CategoryID *uint
	MinPrice   *int
	MaxPrice   *int
	Location   string // substring of location
}

// ListingRepository defines the interface for listing data access.
//
// Search and Recent only see active listings and return the newest first;
// listings created at the same instant keep their insertion order.
type ListingRepository interface {
	Search(filters SearchFilters) ([]models.Listing, error)
	Recent(limit int) ([]models.Listing, error)
	ListByOwner(ownerID uint) ([]models.Listing, error)
	GetByID(id uint) (*models.Listing, error)
	Create(listing *models.Listing) error
	Deactivate(id uint) error
}
