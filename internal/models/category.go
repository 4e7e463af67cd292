package models

// Category is a fixed classification of listing type.
type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`
}

// DefaultCategories is the seed set created on first boot. Order defines the ids.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Bed in a shared room", Description: "A bed in a shared room"},
		{Name: "Room", Description: "A private room in an apartment or house"},
		{Name: "Apartment", Description: "A whole apartment for rent"},
		{Name: "House", Description: "A private house or cottage"},
		{Name: "Hotel", Description: "Hotel rooms"},
		{Name: "Hostel", Description: "Budget accommodation"},
		{Name: "Guest house", Description: "A family-run guest house"},
		{Name: "Holiday camp", Description: "Accommodation at a holiday camp"},
	}
}
