package stripe

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	stripeSubscription "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// @Summary Stripe webhook endpoint
// @Description Signature-verified entry point for Stripe events. Subscription lifecycle events reconcile the local mirror, everything else is acknowledged and ignored.
// @Tags stripe
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "message"
// @Failure 400 {object} map[string]string "error: Signature verification failed"
// @Router /stripe/webhook [post]
func StripeWebhookHandler(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Impossible de lire le corps de la requête"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret non configuré"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, secret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vérification de la signature Stripe échouée"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		handleCheckoutSessionCompleted(c, event)
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		handleSubscriptionEvent(c, event)
	default:
		// Tout événement non géré est acquitté pour éviter les relances
		c.JSON(http.StatusOK, gin.H{"message": "Événement ignoré"})
	}
}

func handleCheckoutSessionCompleted(c *gin.Context, event stripe.Event) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erreur parsing CheckoutSession"})
		return
	}

	userID := sess.ClientReferenceID
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ClientReferenceID manquant"})
		return
	}

	if sess.Subscription == nil {
		// Session en mode paiement unique, rien à réconcilier
		c.JSON(http.StatusOK, gin.H{"message": "Session sans abonnement, ignorée"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé pour cette session"})
		return
	}

	// Le payload de la session ne porte pas l'état de l'abonnement, on le
	// relit depuis l'API
	remote, err := stripeSubscription.Get(sess.Subscription.ID, nil)
	if err != nil {
		utils.LogError(err, "Abonnement introuvable dans handleCheckoutSessionCompleted")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération abonnement"})
		return
	}

	if err := applyRemoteSubscription(user.ID, remote, nil); err != nil {
		utils.LogError(err, "Erreur d'upsert dans handleCheckoutSessionCompleted")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement abonnement"})
		return
	}

	utils.LogSuccess("Abonnement réconcilié depuis checkout.session.completed")
	c.JSON(http.StatusOK, gin.H{"message": "Abonnement synchronisé"})
}

func handleSubscriptionEvent(c *gin.Context, event stripe.Event) {
	var remote stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &remote); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erreur parsing Subscription"})
		return
	}

	// L'événement ne porte pas l'identifiant local : on retrouve
	// l'utilisateur par la ligne miroir existante, par subscription id puis
	// par customer id
	var localSub models.Subscription
	err := db.DB.First(&localSub, "stripe_subscription_id = ?", remote.ID).Error
	if err != nil && remote.Customer != nil {
		err = db.DB.First(&localSub, "stripe_customer_id = ?", remote.Customer.ID).Error
	}
	if err != nil {
		// Abonnement inconnu localement, le chemin sync le récupérera au
		// retour de checkout
		c.JSON(http.StatusOK, gin.H{"message": "Abonnement inconnu localement, ignoré"})
		return
	}

	if err := applyRemoteSubscription(localSub.UserID, &remote, event.Data.Raw); err != nil {
		utils.LogError(err, "Erreur d'upsert dans handleSubscriptionEvent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement abonnement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Abonnement synchronisé"})
}
