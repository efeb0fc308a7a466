package routes

import (
	"illusly-backend/handlers/stripe"
	"illusly-backend/handlers/users"
	"illusly-backend/middleware"

	"github.com/gin-gonic/gin"
)

func StripeRoutes(r *gin.Engine) {
	stripeRoutes := r.Group("/stripe")
	stripeRoutes.Use(middleware.JWTAuth())
	{
		stripeRoutes.POST("/checkout", stripe.CreateCheckoutSession)
		stripeRoutes.POST("/sync", stripe.SyncSubscription)
		stripeRoutes.POST("/refresh", stripe.RefreshSubscription)
		stripeRoutes.POST("/portal", stripe.CreatePortalSession)
		stripeRoutes.GET("/subscription", stripe.GetSubscriptionStatus)
		stripeRoutes.GET("/payment-history", stripe.GetPaymentHistory)
	}

	// Page tarifs, pas de compte requis
	r.GET("/stripe/products", stripe.GetProducts)

	// Signé par Stripe, hors authentification applicative
	r.POST("/stripe/webhook", stripe.StripeWebhookHandler)

	accountRoutes := r.Group("/account")
	accountRoutes.Use(middleware.JWTAuth())
	accountRoutes.POST("/delete", users.DeleteAccount)
}
