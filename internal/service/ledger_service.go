package service

import (
	"errors"

	"campusmart/internal/models"
	"campusmart/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient coin balance")
	ErrUserNotFound        = errors.New("user not found")
)

// LedgerService is the single mutation entry point for coin balances. Every
// balance change writes exactly one CoinTransaction row in the same
// transaction, so users.coins always equals the sum of the audit log.
type LedgerService struct {
	db    *gorm.DB
	coins *repository.CoinRepository
	log   zerolog.Logger
}

func NewLedgerService(db *gorm.DB, coins *repository.CoinRepository, log zerolog.Logger) *LedgerService {
	return &LedgerService{db: db, coins: coins, log: log.With().Str("service", "ledger").Logger()}
}

// Credit adds amount coins to the user's balance.
func (s *LedgerService) Credit(userID uint, amount int64, reason, description string, itemID *uint) (*models.CoinTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var entry *models.CoinTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.CreditTx(tx, userID, amount, reason, description, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit removes amount coins. Fails with ErrInsufficientBalance when the
// balance does not cover the amount; the check and the decrement are one
// guarded statement, so concurrent debits cannot interleave.
func (s *LedgerService) Debit(userID uint, amount int64, reason, description string, itemID *uint) (*models.CoinTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var entry *models.CoinTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.DebitTx(tx, userID, amount, reason, description, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditTx is Credit composed into an enclosing transaction.
func (s *LedgerService) CreditTx(tx *gorm.DB, userID uint, amount int64, reason, description string, itemID *uint) (*models.CoinTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.apply(tx, userID, amount, reason, description, itemID)
}

// DebitTx is Debit composed into an enclosing transaction.
func (s *LedgerService) DebitTx(tx *gorm.DB, userID uint, amount int64, reason, description string, itemID *uint) (*models.CoinTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.apply(tx, userID, -amount, reason, description, itemID)
}

func (s *LedgerService) apply(tx *gorm.DB, userID uint, amount int64, reason, description string, itemID *uint) (*models.CoinTransaction, error) {
	coins := s.coins.WithTx(tx)
	if amount >= 0 {
		rows, err := coins.AddBalance(userID, amount)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			return nil, ErrUserNotFound
		}
	} else {
		rows, err := coins.SubtractBalance(userID, -amount)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			if _, err := coins.Balance(userID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrUserNotFound
				}
				return nil, err
			}
			return nil, ErrInsufficientBalance
		}
	}
	// The row update above holds its lock until commit, so this read sees
	// the balance this entry produced.
	balance, err := coins.Balance(userID)
	if err != nil {
		return nil, err
	}
	entry := &models.CoinTransaction{
		UserID:       userID,
		Amount:       amount,
		Type:         reason,
		Description:  description,
		ItemID:       itemID,
		BalanceAfter: balance,
	}
	if err := coins.CreateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordAudit appends an audit-only row that does not touch the balance
// (pending and failed coin purchase markers).
func (s *LedgerService) RecordAudit(userID uint, amount int64, reason, description, reference string) (*models.CoinTransaction, error) {
	balance, err := s.coins.Balance(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	entry := &models.CoinTransaction{
		UserID:       userID,
		Amount:       amount,
		Type:         reason,
		Description:  description,
		BalanceAfter: balance,
		Reference:    reference,
	}
	if err := s.coins.CreateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Balance returns the user's current coin balance.
func (s *LedgerService) Balance(userID uint) (int64, error) {
	balance, err := s.coins.Balance(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	return balance, err
}

// History returns the user's ledger entries, newest first.
func (s *LedgerService) History(userID uint, limit, offset int) ([]models.CoinTransaction, error) {
	return s.coins.ListByUserID(userID, limit, offset)
}
