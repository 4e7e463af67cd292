package repositories

import (
	"errors"
	"fmt"

	"arenda/internal/customerrors"
	"arenda/internal/models"

	"gorm.io/gorm"
)

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db *gorm.DB
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{
		db: db,
	}
}

// Search returns the active listings matching every supplied filter.
func (r *GORMListingRepository) Search(filters SearchFilters) ([]models.Listing, error) {
	query := r.db.Where("is_active = ?", true)

	if filters.Query != "" {
		query = query.Where(
			fmt.Sprintf("(%s OR %s OR %s)", r.contains("title"), r.contains("description"), r.contains("location")),
			filters.Query, filters.Query, filters.Query,
		)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.Location != "" {
		query = query.Where(r.contains("location"), filters.Location)
	}

	var listings []models.Listing
	if err := r.withCardDetails(newestFirst(query)).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, nil
}

// Recent returns at most limit active listings, newest first.
func (r *GORMListingRepository) Recent(limit int) ([]models.Listing, error) {
	listings := []models.Listing{}
	if limit <= 0 {
		return listings, nil
	}

	query := newestFirst(r.db.Where("is_active = ?", true)).Limit(limit)
	if err := r.withCardDetails(query).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent listings: %w", err)
	}
	return listings, nil
}

// ListByOwner returns every listing of the owner, active or not, newest first.
func (r *GORMListingRepository) ListByOwner(ownerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	query := newestFirst(r.db.Where("user_id = ?", ownerID))
	if err := r.withCardDetails(query).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings of user %d: %w", ownerID, err)
	}
	return listings, nil
}

// GetByID retrieves a single listing with its owner, category, amenities and images.
func (r *GORMListingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	query := r.withCardDetails(r.db.Preload("Owner"))
	if err := query.First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing by ID %d: %w", id, err)
	}
	return &listing, nil
}

// Create inserts the listing together with its amenity and image rows.
func (r *GORMListingRepository) Create(listing *models.Listing) error {
	if err := r.db.Create(listing).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return customerrors.Validationf("listing references an unknown owner or category")
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return customerrors.Validationf("amenities must be unique")
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// Deactivate hides a listing from searches without removing it.
func (r *GORMListingRepository) Deactivate(id uint) error {
	res := r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(map[string]interface{}{"is_active": false})
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate listing %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return customerrors.ErrListingNotFound
	}
	return nil
}

// contains returns a case-sensitive substring predicate on column. LIKE is
// avoided because sqlite folds ASCII case and treats % and _ as wildcards.
func (r *GORMListingRepository) contains(column string) string {
	if r.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("strpos(%s, ?) > 0", column)
	}
	return fmt.Sprintf("instr(%s, ?) > 0", column)
}

func (r *GORMListingRepository) withCardDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Category").
		Preload("Amenities", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

func newestFirst(query *gorm.DB) *gorm.DB {
	return query.Order("created_at DESC").Order("id ASC")
}
