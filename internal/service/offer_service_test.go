package service

import (
	"sync"
	"testing"

	"campusmart/internal/domain"
	"campusmart/internal/models"
	"campusmart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOfferService(db *gorm.DB) *OfferService {
	return NewOfferService(db, repository.NewOfferRepository(db), repository.NewItemRepository(db), zerolog.Nop())
}

func TestSendOfferOnOwnItem(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	_, err := svc.SendOffer(seller.ID, item.ID, 800, "", nil)
	assert.ErrorIs(t, err, ErrSelfOffer)
}

func TestSendOfferOnInactiveItem(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)
	require.NoError(t, db.Model(item).Update("status", domain.ItemStatusSold).Error)

	_, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	assert.ErrorIs(t, err, ErrItemNotActive)
}

func TestSendOfferNegativeAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	_, err := svc.SendOffer(1, 1, -10, "", nil)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestRootOfferAnchorsChain(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	o, err := svc.SendOffer(buyer.ID, item.ID, 800, "would you take 800?", nil)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, o.ReceiverID)
	assert.Equal(t, domain.OfferTypeInitial, o.OfferType)
	assert.Equal(t, o.ID, o.RootID)
	assert.True(t, o.IsRoot())
}

func TestCounterOfferRejectsTargetAndSwapsParties(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	root, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)

	counter, err := svc.SendCounterOffer(root.ID, seller.ID, 900, "meet me at 900")
	require.NoError(t, err)
	assert.Equal(t, seller.ID, counter.SenderID)
	assert.Equal(t, buyer.ID, counter.ReceiverID)
	assert.Equal(t, root.ID, counter.RootID)
	assert.Equal(t, domain.OfferTypeCounter, counter.OfferType)

	rejected, err := svc.GetOffer(root.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusRejected, rejected.Status)
	assert.Equal(t, domain.ReasonCounterMade, rejected.RejectionReason)

	// Buyer accepts the counter; the negotiation converges on 900.
	accepted, err := svc.AcceptOffer(counter.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusAccepted, accepted.Status)

	chain, err := svc.GetChain(counter.ID)
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestCounterOfferOnlyReceiver(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	root, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)

	_, err = svc.SendCounterOffer(root.ID, buyer.ID, 750, "")
	assert.ErrorIs(t, err, ErrNotReceiver)
}

func TestAcceptRejectsOtherPendingInChain(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	root, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)
	// A reply created while the parent stays pending, so the chain holds two
	// pending offers at once.
	reply, err := svc.SendOffer(seller.ID, item.ID, 950, "", &root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.RootID, reply.RootID)

	accepted, err := svc.AcceptOffer(root.ID, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusAccepted, accepted.Status)

	rejected, err := svc.GetOffer(reply.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusRejected, rejected.Status)
	assert.Equal(t, domain.ReasonAnotherAccepted, rejected.RejectionReason)
}

func TestReplyToResolvedParent(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	root, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)
	_, err = svc.AcceptOffer(root.ID, seller.ID)
	require.NoError(t, err)

	// The guarded parent check refuses a reply once the chain resolved.
	_, err = svc.SendOffer(seller.ID, item.ID, 950, "", &root.ID)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestAcceptStrayPendingInResolvedChain(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	root, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)
	_, err = svc.AcceptOffer(root.ID, seller.ID)
	require.NoError(t, err)

	// A pending counter that slipped into the chain after it resolved (a
	// write the guarded paths normally prevent) must not be acceptable.
	stray := &models.Offer{
		SenderID:      seller.ID,
		ReceiverID:    buyer.ID,
		ItemID:        item.ID,
		ParentOfferID: &root.ID,
		RootID:        root.RootID,
		Amount:        900,
		Status:        domain.OfferStatusPending,
		OfferType:     domain.OfferTypeCounter,
	}
	require.NoError(t, db.Create(stray).Error)

	_, err = svc.AcceptOffer(stray.ID, buyer.ID)
	assert.ErrorIs(t, err, ErrChainResolved)

	var accepted int64
	require.NoError(t, db.Model(&models.Offer{}).
		Where("root_id = ? AND status = ?", root.RootID, domain.OfferStatusAccepted).Count(&accepted).Error)
	assert.Equal(t, int64(1), accepted)

	// The failed accept rolled back, leaving the stray row untouched.
	reloaded, err := svc.GetOffer(stray.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusPending, reloaded.Status)
}

func TestConcurrentAcceptsInChain(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	root, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)
	reply, err := svc.SendOffer(seller.ID, item.ID, 950, "", &root.ID)
	require.NoError(t, err)

	// Each party races to accept the offer addressed to them. The accept
	// cascade must leave exactly one accepted offer in the chain.
	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 2)
	go func() {
		defer wg.Done()
		_, err := svc.AcceptOffer(root.ID, seller.ID)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.AcceptOffer(reply.ID, buyer.ID)
		errs <- err
	}()
	wg.Wait()
	close(errs)

	successCount := 0
	for err := range errs {
		if err == nil {
			successCount++
		} else {
			assert.ErrorIs(t, err, ErrOfferNotPending)
		}
	}
	assert.Equal(t, 1, successCount)

	var accepted int64
	require.NoError(t, db.Model(&models.Offer{}).
		Where("root_id = ? AND status = ?", root.RootID, domain.OfferStatusAccepted).Count(&accepted).Error)
	assert.Equal(t, int64(1), accepted)
}

func TestAcceptOfferGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	stranger := createTestUser(t, db, "stranger", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	o, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)

	_, err = svc.AcceptOffer(o.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotReceiver)
	_, err = svc.AcceptOffer(o.ID, buyer.ID)
	assert.ErrorIs(t, err, ErrNotReceiver)

	_, err = svc.AcceptOffer(o.ID, seller.ID)
	require.NoError(t, err)
	// The pending-only guard makes a second accept a no-op error.
	_, err = svc.AcceptOffer(o.ID, seller.ID)
	assert.ErrorIs(t, err, ErrOfferNotPending)
}

func TestRejectOfferDefaultReason(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	o, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)

	rejected, err := svc.RejectOffer(o.ID, seller.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusRejected, rejected.Status)
	assert.Equal(t, domain.ReasonDefaultReject, rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)
}

func TestCancelRootCascadesToPendingChildren(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	root, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)
	reply, err := svc.SendOffer(seller.ID, item.ID, 950, "", &root.ID)
	require.NoError(t, err)

	cancelled, err := svc.CancelOffer(root.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusCancelled, cancelled.Status)

	child, err := svc.GetOffer(reply.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusCancelled, child.Status)
	assert.Equal(t, domain.ReasonRootCancelled, child.RejectionReason)
}

func TestCancelOfferOnlySender(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	seller := createTestUser(t, db, "seller", 0)
	buyer := createTestUser(t, db, "buyer", 0)
	item := createTestItem(t, db, seller.ID, 1000)

	o, err := svc.SendOffer(buyer.ID, item.ID, 800, "", nil)
	require.NoError(t, err)

	_, err = svc.CancelOffer(o.ID, seller.ID)
	assert.ErrorIs(t, err, ErrNotSender)
}
