package domain

// Cafe Model
type Cafe struct {
	ID                uint   `gorm:"primaryKey" json:"id"`                 // Primary key
	Name              string `gorm:"size:250;unique;not null" json:"name"` // Unique coffee shop name
	MapURL            string `gorm:"size:500;not null" json:"map_url"`     // Link to the shop on a map
	ImgURL            string `gorm:"size:500;not null" json:"img_url"`     // Link to an image of the shop
	Location          string `gorm:"size:250;not null" json:"location"`    // Neighbourhood / area name
	Seats             string `gorm:"size:250;not null" json:"seats"`       // Approximate seat-count bucket, e.g. "10-20"
	HasToilet         bool   `gorm:"not null" json:"has_toilet"`           // Washroom available
	HasWifi           bool   `gorm:"not null" json:"has_wifi"`             // Wifi available
	HasSockets        bool   `gorm:"not null" json:"has_sockets"`          // Power sockets available
	CanTakeCalls      bool   `gorm:"not null" json:"can_take_calls"`       // Phone-call friendly
	CoffeePrice       string `gorm:"size:250" json:"coffee_price"`         // Price of a cup, stored as "£x.xx"
	PotentiallyClosed bool   `gorm:"not null" json:"potentially_closed"`   // Set by closure reports, cleared on restore
	Deleted           bool   `gorm:"not null;index" json:"deleted"`        // Soft-delete flag, rows are never erased
}
