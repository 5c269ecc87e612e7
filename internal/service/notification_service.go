package service

import (
	"encoding/json"

	"campusmart/internal/models"
	"campusmart/internal/repository"
	"campusmart/internal/ws"

	"github.com/rs/zerolog"
)

// NotificationService persists notifications and pushes them to connected
// clients over the websocket hub. Delivery is best-effort: failures are
// logged and never propagate to the operation that raised the event.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
	log  zerolog.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, hub: hub, log: log.With().Str("service", "notification").Logger()}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).Str("type", notifType).Msg("failed to persist notification")
		return
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, n)
	}
}

func (s *NotificationService) NotifyOfferReceived(receiverID, offerID uint, senderName string, amount float64) {
	s.Notify(receiverID, "OFFER_RECEIVED", "New offer", senderName+" made you an offer",
		map[string]interface{}{"offer_id": offerID, "amount": amount})
}

func (s *NotificationService) NotifyOfferAccepted(senderID, offerID uint) {
	s.Notify(senderID, "OFFER_ACCEPTED", "Offer accepted", "Your offer was accepted. Arrange a meetup to complete the sale.",
		map[string]interface{}{"offer_id": offerID})
}

func (s *NotificationService) NotifyOfferRejected(senderID, offerID uint, reason string) {
	s.Notify(senderID, "OFFER_REJECTED", "Offer declined", reason,
		map[string]interface{}{"offer_id": offerID})
}

func (s *NotificationService) NotifyCounterOffer(receiverID, offerID uint, amount float64) {
	s.Notify(receiverID, "COUNTER_OFFER", "Counter offer", "You received a counter offer",
		map[string]interface{}{"offer_id": offerID, "amount": amount})
}

func (s *NotificationService) NotifyMeetupScheduled(userID, meetupID uint, location string) {
	s.Notify(userID, "MEETUP_SCHEDULED", "Meetup scheduled", "A meetup has been arranged at "+location,
		map[string]interface{}{"meetup_id": meetupID})
}

func (s *NotificationService) NotifyMeetupConfirmed(userID, meetupID uint) {
	s.Notify(userID, "MEETUP_CONFIRMED", "Meetup confirmed", "The other party confirmed the meetup",
		map[string]interface{}{"meetup_id": meetupID})
}

func (s *NotificationService) NotifyMeetupCompleted(userID, meetupID uint) {
	s.Notify(userID, "MEETUP_COMPLETED", "Sale completed", "The meetup was confirmed by both sides and the sale is complete",
		map[string]interface{}{"meetup_id": meetupID})
}

func (s *NotificationService) NotifyMeetupClosed(userID, meetupID uint, status, reason string) {
	s.Notify(userID, "MEETUP_"+status, "Meetup "+status, reason,
		map[string]interface{}{"meetup_id": meetupID})
}

func (s *NotificationService) NotifyCoinsCredited(userID uint, coins int64) {
	s.Notify(userID, "COINS_CREDITED", "Coins added", "Your coin purchase was successful",
		map[string]interface{}{"coins": coins})
}
