package service

import (
	"errors"
	"fmt"

	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrNotItemOwner = errors.New("only the item owner can perform this action")

type ItemService struct {
	db     *gorm.DB
	items  *repository.ItemRepository
	users  *repository.UserRepository
	ledger *LedgerService
	log    zerolog.Logger
}

func NewItemService(db *gorm.DB, items *repository.ItemRepository, users *repository.UserRepository, ledger *LedgerService, log zerolog.Logger) *ItemService {
	return &ItemService{db: db, items: items, users: users, ledger: ledger, log: log.With().Str("service", "item").Logger()}
}

// Create lists a new item. The listing fee debit, the item row and the
// active_listings bump commit together; a user who cannot cover the fee
// lists nothing.
func (s *ItemService) Create(item *models.Item) (*models.Item, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.items.WithTx(tx).Create(item); err != nil {
			return err
		}
		itemID := item.ID
		if _, err := s.ledger.DebitTx(tx, item.UserID, domain.ListingFeeCoins, domain.CoinReasonItemListing,
			fmt.Sprintf("Listing fee for %q", item.Title), &itemID); err != nil {
			return err
		}
		return s.users.WithTx(tx).ApplyCounterDeltas(item.UserID, 0, 0, 1, 0, 0)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Get(id uint) (*models.Item, error) {
	item, err := s.items.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	return item, err
}

// Deactivate pulls an active listing off the market.
func (s *ItemService) Deactivate(id, requesterID uint) error {
	item, err := s.items.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	if item.UserID != requesterID {
		return ErrNotItemOwner
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.items.WithTx(tx).SetStatusFrom(id, domain.ItemStatusInactive, domain.ItemStatusActive)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrItemNotActive
		}
		return s.users.WithTx(tx).ApplyCounterDeltas(requesterID, 0, 0, -1, 0, 0)
	})
}

func (s *ItemService) ListActive(campus, category string, limit, offset int) ([]models.Item, error) {
	return s.items.ListActive(campus, category, limit, offset)
}

func (s *ItemService) ListMine(userID uint, limit, offset int) ([]models.Item, error) {
	return s.items.ListByUserID(userID, limit, offset)
}
