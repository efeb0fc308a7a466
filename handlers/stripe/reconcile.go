package stripe

import (
	"encoding/json"
	"errors"
	"time"

	"illusly-backend/db"
	"illusly-backend/models"

	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm/clause"
)

var (
	// ErrReferenceMismatch : la session checkout référence un autre
	// utilisateur que l'appelant, on refuse sans rien écrire
	ErrReferenceMismatch = errors.New("checkout session does not belong to this user")
	// ErrNoSubscription : la session n'a pas de subscription ou de customer
	// rattaché
	ErrNoSubscription = errors.New("checkout session has no subscription")
)

// extractCurrentPeriodEnd lit la fin de période courante d'un abonnement
// Stripe. Le champ direct n'est exposé que dans le JSON brut (payload
// webhook ou réponse API), sinon on se rabat sur le premier item de
// l'abonnement. Retourne nil si aucune source n'est exploitable.
func extractCurrentPeriodEnd(remote *stripe.Subscription, raw []byte) *time.Time {
	if raw == nil && remote.LastResponse != nil {
		raw = remote.LastResponse.RawJSON
	}

	if raw != nil {
		var direct struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
		}
		if err := json.Unmarshal(raw, &direct); err == nil && direct.CurrentPeriodEnd > 0 {
			t := time.Unix(direct.CurrentPeriodEnd, 0)
			return &t
		}
	}

	if remote.Items != nil {
		for _, item := range remote.Items.Data {
			if item != nil && item.CurrentPeriodEnd > 0 {
				t := time.Unix(item.CurrentPeriodEnd, 0)
				return &t
			}
		}
	}

	return nil
}

// applyRemoteSubscription projette l'état distant d'un abonnement dans la
// ligne locale de l'utilisateur. Les trois chemins de réconciliation
// (webhook, sync, refresh) passent tous par cet upsert unique : la
// contrainte d'unicité sur user_id garantit une seule ligne, dernier
// écrivain gagnant.
func applyRemoteSubscription(userID string, remote *stripe.Subscription, raw []byte) error {
	sub := models.Subscription{
		UserID:               userID,
		StripeSubscriptionId: remote.ID,
		Status:               models.SubscriptionStatus(remote.Status),
		CurrentPeriodEnd:     extractCurrentPeriodEnd(remote, raw),
		CancelAtPeriodEnd:    remote.CancelAtPeriodEnd,
	}

	if remote.Customer != nil {
		sub.StripeCustomerId = remote.Customer.ID
	}

	if remote.CancelAt > 0 {
		t := time.Unix(remote.CancelAt, 0)
		sub.CancelAt = &t
	}

	return db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"stripe_subscription_id",
			"status",
			"current_period_end",
			"cancel_at",
			"cancel_at_period_end",
			"updated_at",
		}),
	}).Create(&sub).Error
}

// verifyCheckoutSession contrôle qu'une session checkout appartient bien à
// l'appelant avant toute écriture. Le client_reference_id est posé par nous
// à la création de la session : un identifiant de session volé ne permet
// donc pas de s'attribuer l'abonnement d'un autre.
func verifyCheckoutSession(sess *stripe.CheckoutSession, callerID string) error {
	if sess.ClientReferenceID != callerID {
		return ErrReferenceMismatch
	}
	if sess.Subscription == nil || sess.Customer == nil {
		return ErrNoSubscription
	}
	return nil
}
