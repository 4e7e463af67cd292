package models

import "time"

// Listing represents a rental offering posted by a user.
type Listing struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Title       string   `json:"title" gorm:"type:varchar(200);not null"`
	Description string   `json:"description" gorm:"type:text;not null"`
	Price       int      `json:"price" gorm:"not null;index"`
	Location    string   `json:"location" gorm:"type:varchar(200);not null"`
	Address     string   `json:"address,omitempty" gorm:"type:varchar(300)"`
	Rooms       *int     `json:"rooms,omitempty"`
	Area        *float64 `json:"area,omitempty"`
	MaxGuests   *int     `json:"max_guests,omitempty"`
	// IsActive must be set explicitly on create: gorm skips zero values in
	// favour of the column default.
	IsActive   bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	CategoryID uint      `json:"category_id" gorm:"not null;index"`

	Owner     *User          `json:"owner,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Category  *Category      `json:"category,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Amenities []Amenity      `json:"amenities" gorm:"constraint:OnDelete:CASCADE"`
	Images    []ListingImage `json:"images" gorm:"constraint:OnDelete:CASCADE"`
}

// Amenity is a free-form tag attached to a listing. A listing holds each name once.
type Amenity struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	ListingID uint   `json:"-" gorm:"not null;uniqueIndex:idx_listing_amenity"`
	Name      string `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_listing_amenity"`
}

func (Amenity) TableName() string {
	return "listing_amenities"
}

// ListingImage references a stored upload. Position keeps submission order.
type ListingImage struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	ListingID uint   `json:"-" gorm:"not null;index"`
	Position  int    `json:"position" gorm:"not null"`
	Filename  string `json:"filename" gorm:"type:varchar(300);not null"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}

// AmenityNames returns the amenity tags of the listing.
func (l *Listing) AmenityNames() []string {
	names := make([]string, 0, len(l.Amenities))
	for _, a := range l.Amenities {
		names = append(names, a.Name)
	}
	return names
}

// ImageNames returns the stored image references in submission order.
func (l *Listing) ImageNames() []string {
	names := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		names = append(names, img.Filename)
	}
	return names
}

// MainImage returns the first image reference, or "" when there is none.
func (l *Listing) MainImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0].Filename
}
