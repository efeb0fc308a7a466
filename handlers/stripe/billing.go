package stripe

import (
	"errors"
	"net/http"
	"os"
	"time"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/charge"
	session "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/price"
	stripeSubscription "github.com/stripe/stripe-go/v82/subscription"
)

type syncRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type checkoutRequest struct {
	PriceID string `json:"priceId"`
}

// @Summary Create a Stripe Checkout session
// @Description Start a Stripe subscription payment. Requires a verified email. Returns the Checkout session ID for the frontend.
// @Tags stripe
// @Accept json
// @Produce json
// @Param checkout body checkoutRequest false "Optional price override"
// @Security BearerAuth
// @Success 200 {object} map[string]string "sessionId, url"
// @Failure 401 {object} map[string]string "error: Email verification required"
// @Failure 500 {object} map[string]string "error: Stripe error or server error"
// @Router /stripe/checkout [post]
func CreateCheckoutSession(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	if verified, _ := c.Get("user_verified"); verified != true {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email verification required"})
		return
	}

	var req checkoutRequest
	_ = c.ShouldBindJSON(&req)

	priceID := req.PriceID
	if priceID == "" {
		priceID = os.Getenv("STRIPE_PRICE_ID")
	}
	if priceID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No price configured"})
		return
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(appURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(appURL + "/billing/cancel"),
		ClientReferenceID: stripe.String(userID.(string)),
	}

	// Réutilisation du customer existant quand on en connaît un. La
	// vérification côté Stripe est faite au mieux : en cas d'échec on crée
	// simplement une session sans customer, Stripe en créera un.
	var localSub models.Subscription
	if err := db.DB.First(&localSub, "user_id = ?", userID).Error; err == nil && localSub.StripeCustomerId != "" {
		if _, err := customer.Get(localSub.StripeCustomerId, nil); err == nil {
			params.Customer = stripe.String(localSub.StripeCustomerId)
		} else {
			utils.LogErrorWithUser(userID, err, "Customer Stripe introuvable dans CreateCheckoutSession, session sans customer")
		}
	}

	s, err := session.New(params)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la création de la session Stripe dans CreateCheckoutSession")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	utils.LogSuccessWithUser(userID, "Session Stripe créée dans CreateCheckoutSession")
	c.JSON(http.StatusOK, gin.H{"sessionId": s.ID, "url": s.URL})
}

// @Summary Sync subscription after checkout return
// @Description Pull the subscription attached to a Checkout session and reconcile the local state. The session must reference the caller. Idempotent.
// @Tags stripe
// @Accept json
// @Produce json
// @Param sync body syncRequest true "Checkout session ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "subscription"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Session does not belong to this user"
// @Failure 404 {object} map[string]string "error: No subscription on this session"
// @Failure 500 {object} map[string]string "error: Stripe error or server error"
// @Router /stripe/sync [post]
func SyncSubscription(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	sess, err := session.Get(req.SessionID, nil)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Session checkout introuvable dans SyncSubscription")
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout session not found"})
		return
	}

	if err := verifyCheckoutSession(sess, userID.(string)); err != nil {
		if errors.Is(err, ErrReferenceMismatch) {
			utils.LogErrorWithUser(userID, err, "Session d'un autre utilisateur dans SyncSubscription")
			c.JSON(http.StatusForbidden, gin.H{"error": "Checkout session does not belong to this user"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "No subscription attached to this session"})
		return
	}

	remote, err := stripeSubscription.Get(sess.Subscription.ID, nil)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Abonnement Stripe introuvable dans SyncSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving subscription from Stripe"})
		return
	}

	if err := applyRemoteSubscription(userID.(string), remote, nil); err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur d'upsert dans SyncSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving subscription"})
		return
	}

	utils.LogSuccessWithUser(userID, "Abonnement synchronisé dans SyncSubscription")
	subscriptionStatusResponse(c, userID.(string))
}

// @Summary Refresh subscription from Stripe
// @Description Re-read the remote subscription referenced by the local row and overwrite the local state
// @Tags stripe
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "subscription"
// @Failure 404 {object} map[string]string "error: No subscription"
// @Failure 500 {object} map[string]string "error: Stripe error or server error"
// @Router /stripe/refresh [post]
func RefreshSubscription(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var localSub models.Subscription
	if err := db.DB.First(&localSub, "user_id = ?", userID).Error; err != nil || localSub.StripeSubscriptionId == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No subscription to refresh"})
		return
	}

	remote, err := stripeSubscription.Get(localSub.StripeSubscriptionId, nil)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Abonnement Stripe introuvable dans RefreshSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving subscription from Stripe"})
		return
	}

	if err := applyRemoteSubscription(userID.(string), remote, nil); err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur d'upsert dans RefreshSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving subscription"})
		return
	}

	subscriptionStatusResponse(c, userID.(string))
}

// subscriptionStatusResponse renvoie la ligne locale avec l'état dérivé. Un
// échec de lecture s'affiche comme une absence d'abonnement plutôt qu'une
// erreur, la page de facturation reste utilisable.
func subscriptionStatusResponse(c *gin.Context, userID string) {
	var sub models.Subscription
	if err := db.DB.First(&sub, "user_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"subscription": nil})
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"subscription": gin.H{
			"id":                sub.ID,
			"status":            sub.Status,
			"currentPeriodEnd":  sub.CurrentPeriodEnd,
			"cancelAt":          sub.CancelAt,
			"cancelAtPeriodEnd": sub.CancelAtPeriodEnd,
			"cancelScheduled":   sub.CancelScheduled(),
			"canceled":          sub.CanceledDisplay(now),
			"entitled":          sub.Entitled(now),
		},
	})
}

// @Summary Get subscription status
// @Description Local subscription row with derived display state. Returns subscription: null when no row exists.
// @Tags stripe
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "subscription (possibly null)"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /stripe/subscription [get]
func GetSubscriptionStatus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	subscriptionStatusResponse(c, userID.(string))
}

// @Summary Create a billing portal session
// @Description Open the Stripe billing portal for the caller's customer
// @Tags stripe
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "url"
// @Failure 404 {object} map[string]string "error: No customer"
// @Failure 500 {object} map[string]string "error: Stripe error"
// @Router /stripe/portal [post]
func CreatePortalSession(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var localSub models.Subscription
	if err := db.DB.First(&localSub, "user_id = ?", userID).Error; err != nil || localSub.StripeCustomerId == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No Stripe customer for this user"})
		return
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	ps, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(localSub.StripeCustomerId),
		ReturnURL: stripe.String(appURL + "/billing"),
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la création du portail dans CreatePortalSession")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": ps.URL})
}

// @Summary List subscription products
// @Description Active prices with their products, for the pricing page
// @Tags stripe
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} map[string]string "error: Stripe error"
// @Router /stripe/products [get]
func GetProducts(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	params := &stripe.PriceListParams{
		Active: stripe.Bool(true),
	}
	params.AddExpand("data.product")

	products := []gin.H{}
	iter := price.List(params)
	for iter.Next() {
		p := iter.Price()
		entry := gin.H{
			"priceId":    p.ID,
			"unitAmount": p.UnitAmount,
			"currency":   p.Currency,
		}
		if p.Recurring != nil {
			entry["interval"] = p.Recurring.Interval
		}
		if p.Product != nil {
			entry["productId"] = p.Product.ID
			entry["name"] = p.Product.Name
			entry["description"] = p.Product.Description
		}
		products = append(products, entry)
	}
	if err := iter.Err(); err != nil {
		utils.LogError(err, "Erreur lors de la récupération des prix dans GetProducts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// @Summary My payment history
// @Description Charges recorded by Stripe for the caller's customer. Empty list without a customer.
// @Tags stripe
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Stripe error"
// @Router /stripe/payment-history [get]
func GetPaymentHistory(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var localSub models.Subscription
	if err := db.DB.First(&localSub, "user_id = ?", userID).Error; err != nil || localSub.StripeCustomerId == "" {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}

	params := &stripe.ChargeListParams{
		Customer: stripe.String(localSub.StripeCustomerId),
	}

	charges := []gin.H{}
	iter := charge.List(params)
	for iter.Next() {
		ch := iter.Charge()
		charges = append(charges, gin.H{
			"id":         ch.ID,
			"amount":     ch.Amount,
			"currency":   ch.Currency,
			"status":     ch.Status,
			"created":    time.Unix(ch.Created, 0),
			"receiptUrl": ch.ReceiptURL,
		})
	}
	if err := iter.Err(); err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la récupération des paiements dans GetPaymentHistory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving payment history"})
		return
	}

	c.JSON(http.StatusOK, charges)
}
