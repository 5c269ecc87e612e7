package service

import (
	"errors"
	"time"

	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrOfferNotFound   = errors.New("offer not found")
	ErrOfferNotPending = errors.New("offer is not in pending status")
	ErrChainResolved   = errors.New("negotiation chain already has an accepted offer")
	ErrNotReceiver     = errors.New("only the offer receiver can perform this action")
	ErrNotSender       = errors.New("only the offer sender can perform this action")
	ErrSelfOffer       = errors.New("cannot make an offer on your own item")
	ErrInvalidParent   = errors.New("parent offer is not in pending status")
	ErrItemNotFound    = errors.New("item not found")
	ErrItemNotActive   = errors.New("item is not available for offers")
	ErrNegativeAmount  = errors.New("offer amount cannot be negative")
)

// OfferService runs the negotiation state machine. Each offer moves exactly
// once from pending to accepted, rejected or cancelled; chain-wide effects
// (accept cascade, root cancellation) happen in the same transaction as the
// triggering transition.
type OfferService struct {
	db     *gorm.DB
	offers *repository.OfferRepository
	items  *repository.ItemRepository
	log    zerolog.Logger
}

func NewOfferService(db *gorm.DB, offers *repository.OfferRepository, items *repository.ItemRepository, log zerolog.Logger) *OfferService {
	return &OfferService{db: db, offers: offers, items: items, log: log.With().Str("service", "offer").Logger()}
}

// SendOffer creates a root offer on an item, or a counter-offer when
// parentOfferID is set. A counter-offer swaps sender and receiver relative
// to its parent and requires the parent to still be pending.
func (s *OfferService) SendOffer(senderID, itemID uint, amount float64, message string, parentOfferID *uint) (*models.Offer, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	var created *models.Offer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		offers := s.offers.WithTx(tx)
		items := s.items.WithTx(tx)

		item, err := items.GetByID(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		o := &models.Offer{
			SenderID: senderID,
			ItemID:   itemID,
			Amount:   amount,
			Message:  message,
			Status:   domain.OfferStatusPending,
		}
		created = o
		if parentOfferID == nil {
			if item.UserID == senderID {
				return ErrSelfOffer
			}
			if item.Status != domain.ItemStatusActive {
				return ErrItemNotActive
			}
			o.ReceiverID = item.UserID
			o.OfferType = domain.OfferTypeInitial
			if err := offers.Create(o); err != nil {
				return err
			}
			// A root offer anchors its own chain.
			o.RootID = o.ID
			return offers.SetRootID(o.ID, o.ID)
		}

		parent, err := offers.GetByID(*parentOfferID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if parent.ReceiverID != senderID {
			return ErrNotReceiver
		}
		// The snapshot read above is not enough: an accept cascade can resolve
		// the chain between the read and the insert. The guarded touch locks
		// the parent row and re-checks it is still pending.
		rows, err := offers.TouchPending(parent.ID, time.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidParent
		}
		o.ReceiverID = parent.SenderID
		o.ParentOfferID = parentOfferID
		o.RootID = parent.RootID
		o.OfferType = domain.OfferTypeCounter
		return offers.Create(o)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SendCounterOffer atomically rejects the target offer with reason "Counter
// offer made" and creates a replacement offer linked to the chain root with
// sender and receiver swapped.
func (s *OfferService) SendCounterOffer(offerID, counterSenderID uint, amount float64, message string) (*models.Offer, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	var created *models.Offer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		offers := s.offers.WithTx(tx)

		target, err := offers.GetByID(offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if target.ReceiverID != counterSenderID {
			return ErrNotReceiver
		}
		rows, err := offers.MarkRejected(target.ID, domain.ReasonCounterMade, time.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOfferNotPending
		}
		rootID := target.RootID
		created = &models.Offer{
			SenderID:      counterSenderID,
			ReceiverID:    target.SenderID,
			ItemID:        target.ItemID,
			ParentOfferID: &rootID,
			RootID:        rootID,
			Amount:        amount,
			Message:       message,
			Status:        domain.OfferStatusPending,
			OfferType:     domain.OfferTypeCounter,
		}
		return offers.Create(created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AcceptOffer accepts a pending offer and rejects every other still-pending
// offer in the same chain, guaranteeing at most one accepted offer per
// chain.
func (s *OfferService) AcceptOffer(offerID, accepterID uint) (*models.Offer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		offers := s.offers.WithTx(tx)

		o, err := offers.GetByID(offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if o.ReceiverID != accepterID {
			return ErrNotReceiver
		}
		now := time.Now()
		rows, err := offers.MarkAccepted(offerID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOfferNotPending
		}
		// A stray pending offer inside an already-resolved chain must not
		// yield a second acceptance; the count includes the row just flipped.
		accepted, err := offers.CountAcceptedInChain(o.RootID)
		if err != nil {
			return err
		}
		if accepted > 1 {
			return ErrChainResolved
		}
		return offers.RejectOtherPendingInChain(o.RootID, offerID, domain.ReasonAnotherAccepted, now)
	})
	if err != nil {
		return nil, err
	}
	return s.offers.GetByID(offerID)
}

// RejectOffer rejects a pending offer. Only the receiver may reject.
func (s *OfferService) RejectOffer(offerID, rejecterID uint, reason string) (*models.Offer, error) {
	if reason == "" {
		reason = domain.ReasonDefaultReject
	}
	o, err := s.offers.GetByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if o.ReceiverID != rejecterID {
		return nil, ErrNotReceiver
	}
	rows, err := s.offers.MarkRejected(offerID, reason, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrOfferNotPending
	}
	return s.offers.GetByID(offerID)
}

// CancelOffer cancels a pending offer. Only the sender may cancel.
// Cancelling a root offer also cancels its still-pending counter-offers.
func (s *OfferService) CancelOffer(offerID, cancellerID uint) (*models.Offer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		offers := s.offers.WithTx(tx)

		o, err := offers.GetByID(offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if o.SenderID != cancellerID {
			return ErrNotSender
		}
		now := time.Now()
		rows, err := offers.MarkCancelled(offerID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOfferNotPending
		}
		if o.IsRoot() {
			return offers.CancelPendingChildren(o.RootID, domain.ReasonRootCancelled, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.offers.GetByID(offerID)
}

// GetOffer returns one offer.
func (s *OfferService) GetOffer(offerID uint) (*models.Offer, error) {
	o, err := s.offers.GetByID(offerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferNotFound
	}
	return o, err
}

// GetChain returns the whole negotiation chain the offer belongs to, oldest
// first.
func (s *OfferService) GetChain(offerID uint) ([]models.Offer, error) {
	o, err := s.offers.GetByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return s.offers.ListChain(o.RootID)
}

func (s *OfferService) ListSent(userID uint, limit, offset int) ([]models.Offer, error) {
	return s.offers.ListSent(userID, limit, offset)
}

func (s *OfferService) ListReceived(userID uint, limit, offset int) ([]models.Offer, error) {
	return s.offers.ListReceived(userID, limit, offset)
}
