package models

import (
	"time"
)

// SubscriptionStatus reflète tel quel le statut renvoyé par Stripe

type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionUnpaid     SubscriptionStatus = "unpaid"
)

// Subscription est le miroir local de l'abonnement Stripe d'un utilisateur.
// Une seule ligne par utilisateur (contrainte unique sur user_id) : les trois
// chemins de réconciliation (webhook, sync, refresh) écrivent tous la même
// ligne en upsert, dernier écrivain gagnant.
type Subscription struct {
	ID                   string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID               string             `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	StripeCustomerId     string             `json:"stripeCustomerId"`
	StripeSubscriptionId string             `json:"stripeSubscriptionId"`
	Status               SubscriptionStatus `json:"status" gorm:"type:varchar(30)"`
	CurrentPeriodEnd     *time.Time         `json:"currentPeriodEnd"`
	CancelAt             *time.Time         `json:"cancelAt"`
	CancelAtPeriodEnd    bool               `json:"cancelAtPeriodEnd"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// CancelScheduled indique qu'une annulation est programmée mais pas encore
// effective (statut non annulé, avec cancel_at_period_end ou une date
// cancel_at posée).
func (s *Subscription) CancelScheduled() bool {
	return s.Status != SubscriptionCanceled && (s.CancelAtPeriodEnd || s.CancelAt != nil)
}

// PastEnd indique que la fin de période courante est connue et dépassée.
func (s *Subscription) PastEnd(now time.Time) bool {
	return s.CurrentPeriodEnd != nil && !now.Before(*s.CurrentPeriodEnd)
}

// CanceledDisplay est l'état "annulé" affiché : soit le statut distant est
// canceled, soit une annulation programmée a atteint la fin de période.
func (s *Subscription) CanceledDisplay(now time.Time) bool {
	return s.Status == SubscriptionCanceled || (s.CancelScheduled() && s.PastEnd(now))
}

// Entitled est la décision d'accès au contenu payant, recalculée à chaque
// lecture et jamais stockée. Une annulation demandée en cours de période ne
// prend effet qu'à la fin de celle-ci.
func (s *Subscription) Entitled(now time.Time) bool {
	if s.Status != SubscriptionActive && s.Status != SubscriptionTrialing {
		return false
	}
	return !s.CanceledDisplay(now)
}
