package domain

// Offer lifecycle
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusCancelled = "cancelled"
	OfferStatusCompleted = "completed"
)

const (
	OfferTypeInitial = "initial"
	OfferTypeCounter = "counter"
)

// Canonical rejection/cancellation reasons written by cascades.
const (
	ReasonCounterMade     = "Counter offer made"
	ReasonAnotherAccepted = "Another offer was accepted"
	ReasonRootCancelled   = "Original offer was cancelled"
	ReasonDefaultReject   = "Offer rejected"
)

// Meetup lifecycle
const (
	MeetupStatusPending   = "pending_meetup"
	MeetupStatusScheduled = "meetup_scheduled"
	MeetupStatusCompleted = "completed"
	MeetupStatusFailed    = "failed"
	MeetupStatusCancelled = "cancelled"
)

const (
	MeetupRoleBuyer  = "buyer"
	MeetupRoleSeller = "seller"
)

const (
	LocationTypePublic   = "public"
	LocationTypeCampus   = "campus"
	LocationTypeDoorstep = "doorstep"
)

// Item status (as seen by the negotiation core)
const (
	ItemStatusActive   = "active"
	ItemStatusReserved = "reserved"
	ItemStatusSold     = "sold"
	ItemStatusInactive = "inactive"
)

// Coin transaction reasons
const (
	CoinReasonWelcomeBonus        = "welcome_bonus"
	CoinReasonItemListing         = "item_listing"
	CoinReasonSaleCompleted       = "sale_completed"
	CoinReasonPurchaseCompleted   = "purchase_completed"
	CoinReasonCoinPurchase        = "coin_purchase"
	CoinReasonCoinPurchasePending = "coin_purchase_pending"
	CoinReasonCoinPurchaseFailed  = "coin_purchase_failed"
)

// Reward coins credited on settlement.
const (
	SellerRewardCoins = 5
	BuyerRewardCoins  = 2
)

const (
	WelcomeBonusCoins = 25
	ListingFeeCoins   = 1
)

// Coin purchase bounds (phase 1 validation).
const (
	MinCoinPurchase = 10
	MaxCoinPurchase = 100000
)

const TransactionStatusCompleted = "completed"
