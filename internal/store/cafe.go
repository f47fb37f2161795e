package store

import (
	"cafe_directory/internal/domain"

	"gorm.io/gorm"
)

// CafeFilter carries the optional browse criteria. Boolean fields are
// "must have" requirements; an empty Locations or Seats slice imposes no
// constraint rather than matching nothing.
type CafeFilter struct {
	HasWifi      bool
	HasSockets   bool
	CanTakeCalls bool
	HasToilet    bool
	Locations    []string
	Seats        []string
}

// FilterQuery translates the criteria into a query over non-deleted cafes.
// Criteria combine with AND; values inside a multi-select combine with IN.
// A nil filter yields the plain non-deleted set.
func FilterQuery(db *gorm.DB, f *CafeFilter) *gorm.DB {
	q := db.Model(&domain.Cafe{}).Where("deleted = ?", false)
	if f == nil {
		return q
	}
	if f.HasWifi {
		q = q.Where("has_wifi = ?", true)
	}
	if f.HasSockets {
		q = q.Where("has_sockets = ?", true)
	}
	if f.CanTakeCalls {
		q = q.Where("can_take_calls = ?", true)
	}
	if f.HasToilet {
		q = q.Where("has_toilet = ?", true)
	}
	if len(f.Locations) > 0 {
		q = q.Where("location IN ?", f.Locations)
	}
	if len(f.Seats) > 0 {
		q = q.Where("seats IN ?", f.Seats)
	}
	return q
}

// ListCafes returns the non-deleted cafes matching the filter, oldest first.
func ListCafes(db *gorm.DB, f *CafeFilter) ([]domain.Cafe, error) {
	var cafes []domain.Cafe
	if err := FilterQuery(db, f).Order("id").Find(&cafes).Error; err != nil {
		return nil, err
	}
	return cafes, nil
}

// GetCafe looks up a single cafe by id. Public callers pass
// includeDeleted=false so soft-deleted listings read as not found; the admin
// view passes true.
func GetCafe(db *gorm.DB, id uint, includeDeleted bool) (*domain.Cafe, error) {
	q := db
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	var cafe domain.Cafe
	if err := q.First(&cafe, id).Error; err != nil {
		return nil, err
	}
	return &cafe, nil
}

// GetCafeByName looks up a cafe by its unique name, deleted rows included.
func GetCafeByName(db *gorm.DB, name string) (*domain.Cafe, error) {
	var cafe domain.Cafe
	if err := db.Where("name = ?", name).First(&cafe).Error; err != nil {
		return nil, err
	}
	return &cafe, nil
}

// CafeChoices returns the distinct location and seat-count values, sorted
// ascending, that populate the filter and add-listing forms. The projection
// runs over the whole table, deleted rows included; see DESIGN.md for why
// that quirk is kept.
func CafeChoices(db *gorm.DB) (locations, seats []string, err error) {
	if err = db.Model(&domain.Cafe{}).Distinct().Order("location").Pluck("location", &locations).Error; err != nil {
		return nil, nil, err
	}
	if err = db.Model(&domain.Cafe{}).Distinct().Order("seats").Pluck("seats", &seats).Error; err != nil {
		return nil, nil, err
	}
	return locations, seats, nil
}

// CreateCafe persists a new cafe. The unique name constraint is enforced by
// the database; callers map the violation to a conflict.
func CreateCafe(db *gorm.DB, cafe *domain.Cafe) error {
	return db.Create(cafe).Error
}

// UpdateCafe writes back every field of an already-loaded cafe.
func UpdateCafe(db *gorm.DB, cafe *domain.Cafe) error {
	return db.Save(cafe).Error
}

// ReportClosure marks a cafe as potentially closed. Re-reporting an already
// flagged cafe is a no-op. Soft-deleted cafes are invisible to the public
// report page, so they read as not found here too.
func ReportClosure(db *gorm.DB, id uint) error {
	var cafe domain.Cafe
	if err := db.Where("deleted = ?", false).First(&cafe, id).Error; err != nil {
		return err
	}
	return db.Model(&cafe).Update("potentially_closed", true).Error
}

// SoftDeleteCafe hides a cafe from public queries without erasing the row.
// Idempotent.
func SoftDeleteCafe(db *gorm.DB, id uint) error {
	var cafe domain.Cafe
	if err := db.First(&cafe, id).Error; err != nil {
		return err
	}
	return db.Model(&cafe).Update("deleted", true).Error
}

// RestoreCafe returns a cafe to the active state, clearing the deleted and
// potentially-closed flags in a single update. Idempotent.
func RestoreCafe(db *gorm.DB, id uint) error {
	var cafe domain.Cafe
	if err := db.First(&cafe, id).Error; err != nil {
		return err
	}
	return db.Model(&cafe).Updates(map[string]any{
		"deleted":            false,
		"potentially_closed": false,
	}).Error
}

// AdminListCafes enumerates every cafe, deleted ones included, with
// potentially-closed listings surfaced first for the moderation view.
func AdminListCafes(db *gorm.DB, offset, limit int) ([]domain.Cafe, int64, error) {
	var total int64
	if err := db.Model(&domain.Cafe{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cafes []domain.Cafe
	if err := db.Order("potentially_closed desc, id asc").Offset(offset).Limit(limit).Find(&cafes).Error; err != nil {
		return nil, 0, err
	}
	return cafes, total, nil
}

// DirectoryStats summarizes the stores for the admin dashboard.
type DirectoryStats struct {
	Cafes   int64 `json:"cafes"`
	Flagged int64 `json:"flagged"`
	Deleted int64 `json:"deleted"`
	Users   int64 `json:"users"`
	Admins  int64 `json:"admins"`
}

// Stats counts cafes (non-deleted), flagged and deleted listings, and users.
func Stats(db *gorm.DB) (*DirectoryStats, error) {
	var s DirectoryStats
	if err := db.Model(&domain.Cafe{}).Where("deleted = ?", false).Count(&s.Cafes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Cafe{}).Where("potentially_closed = ?", true).Count(&s.Flagged).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Cafe{}).Where("deleted = ?", true).Count(&s.Deleted).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.User{}).Count(&s.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.User{}).Where("admin = ?", true).Count(&s.Admins).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
