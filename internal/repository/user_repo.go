package repository

import (
	"campusmart/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("google_id = ?", googleID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// ApplyCounterDeltas adjusts the cached marketplace counters in one UPDATE.
// active_listings is floored at zero.
func (r *UserRepository) ApplyCounterDeltas(userID uint, itemsSold, itemsBought, activeListings int, earnings, spent float64) error {
	updates := map[string]interface{}{}
	if itemsSold != 0 {
		updates["items_sold"] = gorm.Expr("items_sold + ?", itemsSold)
	}
	if itemsBought != 0 {
		updates["items_bought"] = gorm.Expr("items_bought + ?", itemsBought)
	}
	if activeListings != 0 {
		updates["active_listings"] = gorm.Expr("CASE WHEN active_listings + ? < 0 THEN 0 ELSE active_listings + ? END", activeListings, activeListings)
	}
	if earnings != 0 {
		updates["total_earnings"] = gorm.Expr("total_earnings + ?", earnings)
	}
	if spent != 0 {
		updates["total_spent"] = gorm.Expr("total_spent + ?", spent)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}
