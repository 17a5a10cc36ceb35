// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/midvale99/ToolShare/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	ListingHandler *handler.ListingHandler
	RequestHandler *handler.RequestHandler
	MessageHandler *handler.MessageHandler
	ProfileHandler *handler.ProfileHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	listingHandler *handler.ListingHandler
	requestHandler *handler.RequestHandler
	messageHandler *handler.MessageHandler
	profileHandler *handler.ProfileHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		listingHandler: params.ListingHandler,
		requestHandler: params.RequestHandler,
		messageHandler: params.MessageHandler,
		profileHandler: params.ProfileHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Identity and profiles
	e.POST("/identity", r.profileHandler.SignIn)
	userGroup := e.Group("/users")
	{
		userGroup.GET("/:id", r.profileHandler.GetProfile)
		userGroup.PUT("/:id", r.profileHandler.UpdateProfile)
	}

	// Board listings
	listingGroup := e.Group("/listings")
	{
		listingGroup.GET("", r.listingHandler.GetBoard)
		listingGroup.GET("/raw", r.listingHandler.GetRawListings)
		listingGroup.POST("", r.listingHandler.CreateListing)
	}

	// Borrow requests and their chat threads
	requestGroup := e.Group("/requests")
	{
		requestGroup.GET("", r.requestHandler.ListRequests)
		requestGroup.POST("", r.requestHandler.CreateRequest)
		requestGroup.POST("/:id/accept", r.requestHandler.Accept)
		requestGroup.POST("/:id/decline", r.requestHandler.Decline)
		requestGroup.POST("/:id/handover", r.requestHandler.HandOver)
		requestGroup.POST("/:id/complete", r.requestHandler.Complete)
		requestGroup.GET("/:id/messages", r.messageHandler.GetThread)
		requestGroup.POST("/:id/messages", r.messageHandler.PostMessage)
	}
}
