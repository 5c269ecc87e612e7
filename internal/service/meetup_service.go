package service

import (
	"errors"
	"fmt"
	"time"

	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrMeetupNotFound    = errors.New("meetup not found")
	ErrMeetupNotOpen     = errors.New("meetup is no longer open")
	ErrNotParticipant    = errors.New("user is not a party to this meetup")
	ErrRoleMismatch      = errors.New("confirmation role does not match user")
	ErrOfferNotAccepted  = errors.New("offer must be accepted before scheduling a meetup")
	ErrItemNotReservable = errors.New("item cannot be reserved")
	ErrOwnItem           = errors.New("cannot arrange a meetup for your own item")
	ErrMeetupExists      = errors.New("an open meetup already exists for this offer")
)

// MeetupDetails carries the scheduling fields supplied by the requester.
type MeetupDetails struct {
	Location           string
	LocationType       string
	PreferredTime      time.Time
	AlternativeTime    *time.Time
	PaymentMethod      string
	BuyerNotes         string
	AcknowledgedSafety bool
}

// MeetupService coordinates a meetup from creation through dual confirmation
// to settlement. All multi-step transitions run in one transaction; a
// failure at any step rolls the whole operation back.
type MeetupService struct {
	db           *gorm.DB
	meetups      *repository.MeetupRepository
	offers       *repository.OfferRepository
	items        *repository.ItemRepository
	users        *repository.UserRepository
	transactions *repository.TransactionRepository
	ledger       *LedgerService
	log          zerolog.Logger
}

func NewMeetupService(
	db *gorm.DB,
	meetups *repository.MeetupRepository,
	offers *repository.OfferRepository,
	items *repository.ItemRepository,
	users *repository.UserRepository,
	transactions *repository.TransactionRepository,
	ledger *LedgerService,
	log zerolog.Logger,
) *MeetupService {
	return &MeetupService{
		db:           db,
		meetups:      meetups,
		offers:       offers,
		items:        items,
		users:        users,
		transactions: transactions,
		ledger:       ledger,
		log:          log.With().Str("service", "meetup").Logger(),
	}
}

// CreateFromOffer schedules a meetup for an accepted offer. The seller is
// the item owner, the buyer is the other party, and whichever of them
// creates the meetup implicitly confirms their side. The item is reserved in
// the same transaction.
func (s *MeetupService) CreateFromOffer(offerID, requesterID uint, details MeetupDetails) (*models.Meetup, error) {
	var meetup *models.Meetup
	err := s.db.Transaction(func(tx *gorm.DB) error {
		offers := s.offers.WithTx(tx)
		items := s.items.WithTx(tx)
		meetups := s.meetups.WithTx(tx)

		offer, err := offers.GetByID(offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if offer.Status != domain.OfferStatusAccepted {
			return ErrOfferNotAccepted
		}
		if requesterID != offer.SenderID && requesterID != offer.ReceiverID {
			return ErrNotParticipant
		}
		if _, err := meetups.GetOpenByOfferID(offer.ID); err == nil {
			return ErrMeetupExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		item, err := items.GetByID(offer.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		sellerID := item.UserID
		buyerID := offer.SenderID
		if buyerID == sellerID {
			buyerID = offer.ReceiverID
		}
		if buyerID == sellerID {
			return ErrOwnItem
		}
		rows, err := items.SetStatusFrom(item.ID, domain.ItemStatusReserved, domain.ItemStatusActive)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrItemNotReservable
		}

		offID := offer.ID
		meetup = s.newMeetup(buyerID, sellerID, item.ID, &offID, offer.Amount, item.Price, details)
		meetup.Status = domain.MeetupStatusScheduled
		s.confirmCreator(meetup, requesterID)
		return meetups.Create(meetup)
	})
	if err != nil {
		return nil, err
	}
	return meetup, nil
}

// CreateDirect schedules a meetup at the listed price without a negotiation,
// initiated by the buyer.
func (s *MeetupService) CreateDirect(buyerID, itemID uint, details MeetupDetails) (*models.Meetup, error) {
	var meetup *models.Meetup
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items := s.items.WithTx(tx)
		meetups := s.meetups.WithTx(tx)

		item, err := items.GetByID(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if item.UserID == buyerID {
			return ErrOwnItem
		}
		rows, err := items.SetStatusFrom(item.ID, domain.ItemStatusReserved, domain.ItemStatusActive)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrItemNotReservable
		}

		meetup = s.newMeetup(buyerID, item.UserID, item.ID, nil, item.Price, item.Price, details)
		meetup.Status = domain.MeetupStatusPending
		s.confirmCreator(meetup, buyerID)
		return meetups.Create(meetup)
	})
	if err != nil {
		return nil, err
	}
	return meetup, nil
}

func (s *MeetupService) newMeetup(buyerID, sellerID, itemID uint, offerID *uint, agreed, original float64, d MeetupDetails) *models.Meetup {
	if d.LocationType == "" {
		d.LocationType = domain.LocationTypePublic
	}
	return &models.Meetup{
		BuyerID:            buyerID,
		SellerID:           sellerID,
		ItemID:             itemID,
		OfferID:            offerID,
		AgreedPrice:        agreed,
		OriginalPrice:      original,
		Location:           d.Location,
		LocationType:       d.LocationType,
		PreferredTime:      d.PreferredTime,
		AlternativeTime:    d.AlternativeTime,
		PaymentMethod:      d.PaymentMethod,
		BuyerNotes:         d.BuyerNotes,
		AcknowledgedSafety: d.AcknowledgedSafety,
	}
}

// confirmCreator marks the creating party's side as confirmed: arranging the
// meetup is an affirmation of intent.
func (s *MeetupService) confirmCreator(m *models.Meetup, creatorID uint) {
	now := time.Now()
	if creatorID == m.BuyerID {
		m.BuyerConfirmed = true
		m.BuyerConfirmedAt = &now
	} else {
		m.SellerConfirmed = true
		m.SellerConfirmedAt = &now
	}
}

// Reschedule updates the meetup terms while it is still open and re-confirms
// the requesting side. The other party's confirmation is intentionally left
// untouched (carried behavior, see DESIGN.md).
func (s *MeetupService) Reschedule(meetupID, requesterID uint, newLocation *string, newPreferred, newAlternative *time.Time) (*models.Meetup, error) {
	var meetup *models.Meetup
	err := s.db.Transaction(func(tx *gorm.DB) error {
		meetups := s.meetups.WithTx(tx)

		m, err := meetups.GetByID(meetupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMeetupNotFound
			}
			return err
		}
		role := m.RoleOf(requesterID)
		if role == "" {
			return ErrNotParticipant
		}
		if !m.IsOpen() {
			return ErrMeetupNotOpen
		}
		if newLocation != nil {
			m.Location = *newLocation
		}
		if newPreferred != nil {
			m.PreferredTime = *newPreferred
		}
		if newAlternative != nil {
			m.AlternativeTime = newAlternative
		}
		s.confirmCreator(m, requesterID)
		meetup = m
		return meetups.Update(m)
	})
	if err != nil {
		return nil, err
	}
	return meetup, nil
}

// Confirm records one party's confirmation. When both sides have confirmed,
// the meetup completes and settlement runs in the same transaction: the item
// is marked sold, a settlement record is written, both parties' counters are
// updated best-effort, and reward coins are credited. The bool result
// reports whether this call completed the meetup.
func (s *MeetupService) Confirm(meetupID, confirmerID uint, role string) (*models.Meetup, bool, error) {
	settled := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		meetups := s.meetups.WithTx(tx)

		m, err := meetups.GetByID(meetupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMeetupNotFound
			}
			return err
		}
		actual := m.RoleOf(confirmerID)
		if actual == "" {
			return ErrNotParticipant
		}
		if role != "" && role != actual {
			return ErrRoleMismatch
		}
		if !m.IsOpen() {
			return ErrMeetupNotOpen
		}
		now := time.Now()
		rows, err := meetups.SetConfirmed(meetupID, actual, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// A concurrent cancel or fail closed the meetup after the read above.
			return ErrMeetupNotOpen
		}
		m, err = meetups.GetByID(meetupID)
		if err != nil {
			return err
		}
		if !m.BothConfirmed() {
			return nil
		}
		// The guarded transition fires at most once per meetup, so the
		// settlement below cannot run twice even under concurrent confirms.
		rows, err = meetups.MarkCompleted(meetupID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		settled = true
		return s.settle(tx, m, now)
	})
	if err != nil {
		return nil, false, err
	}
	m, err := s.meetups.GetByID(meetupID)
	return m, settled, err
}

// settle performs the completed-meetup side effects. The settlement record,
// item sale and reward credits are part of the atomic unit; cached counter
// updates are best-effort and only logged on failure.
func (s *MeetupService) settle(tx *gorm.DB, m *models.Meetup, now time.Time) error {
	items := s.items.WithTx(tx)
	users := s.users.WithTx(tx)
	offers := s.offers.WithTx(tx)
	transactions := s.transactions.WithTx(tx)

	if err := items.MarkSold(m.ItemID); err != nil {
		return err
	}
	if m.OfferID != nil {
		if _, err := offers.MarkCompleted(*m.OfferID); err != nil {
			return err
		}
	}
	record := &models.Transaction{
		BuyerID:     m.BuyerID,
		SellerID:    m.SellerID,
		ItemID:      m.ItemID,
		MeetupID:    m.ID,
		Amount:      m.AgreedPrice,
		Status:      domain.TransactionStatusCompleted,
		CompletedAt: &now,
	}
	if err := transactions.Create(record); err != nil {
		return err
	}

	itemID := m.ItemID
	if _, err := s.ledger.CreditTx(tx, m.SellerID, domain.SellerRewardCoins, domain.CoinReasonSaleCompleted,
		fmt.Sprintf("Sale completed for item #%d", m.ItemID), &itemID); err != nil {
		return err
	}
	if _, err := s.ledger.CreditTx(tx, m.BuyerID, domain.BuyerRewardCoins, domain.CoinReasonPurchaseCompleted,
		fmt.Sprintf("Purchase completed for item #%d", m.ItemID), &itemID); err != nil {
		return err
	}

	if err := users.ApplyCounterDeltas(m.SellerID, 1, 0, -1, m.AgreedPrice, 0); err != nil {
		s.log.Error().Err(err).Uint("meetup_id", m.ID).Uint("user_id", m.SellerID).Msg("seller counter update failed")
	}
	if err := users.ApplyCounterDeltas(m.BuyerID, 0, 1, 0, 0, m.AgreedPrice); err != nil {
		s.log.Error().Err(err).Uint("meetup_id", m.ID).Uint("user_id", m.BuyerID).Msg("buyer counter update failed")
	}
	return nil
}

// MarkFailed records that the meetup did not happen. The linked offer is
// cancelled and the item returns to active so it can be relisted.
func (s *MeetupService) MarkFailed(meetupID, requesterID uint, reason string, relist bool) (*models.Meetup, error) {
	if reason == "" {
		reason = "Meetup failed"
	}
	s.log.Info().Uint("meetup_id", meetupID).Uint("user_id", requesterID).Bool("relist", relist).Msg("meetup marked failed")
	return s.close(meetupID, requesterID, reason, func(meetups *repository.MeetupRepository, at time.Time) (int64, error) {
		return meetups.MarkFailed(meetupID, reason, at)
	})
}

// Cancel calls the meetup off. Either party may cancel while it is open.
func (s *MeetupService) Cancel(meetupID, requesterID uint, reason string) (*models.Meetup, error) {
	if reason == "" {
		reason = "Meetup cancelled"
	}
	return s.close(meetupID, requesterID, reason, func(meetups *repository.MeetupRepository, at time.Time) (int64, error) {
		return meetups.MarkCancelled(meetupID, reason, at)
	})
}

// close runs the shared failed/cancelled transition: guard the status flip,
// cancel the linked offer, release the item.
func (s *MeetupService) close(meetupID, requesterID uint, reason string, transition func(*repository.MeetupRepository, time.Time) (int64, error)) (*models.Meetup, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		meetups := s.meetups.WithTx(tx)
		offers := s.offers.WithTx(tx)
		items := s.items.WithTx(tx)

		m, err := meetups.GetByID(meetupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMeetupNotFound
			}
			return err
		}
		if m.RoleOf(requesterID) == "" {
			return ErrNotParticipant
		}
		now := time.Now()
		rows, err := transition(meetups, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrMeetupNotOpen
		}
		if m.OfferID != nil {
			if _, err := offers.CancelActive(*m.OfferID, now); err != nil {
				return err
			}
		}
		_, err = items.SetStatusFrom(m.ItemID, domain.ItemStatusActive, domain.ItemStatusReserved)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.meetups.GetByID(meetupID)
}

// GetMeetup returns one meetup, restricted to its participants.
func (s *MeetupService) GetMeetup(meetupID, requesterID uint) (*models.Meetup, error) {
	m, err := s.meetups.GetByIDWithItem(meetupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetupNotFound
		}
		return nil, err
	}
	if m.RoleOf(requesterID) == "" {
		return nil, ErrNotParticipant
	}
	return m, nil
}

func (s *MeetupService) ListMine(userID uint, limit, offset int) ([]models.Meetup, error) {
	return s.meetups.ListByUserID(userID, limit, offset)
}
