package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/UGONES/church-site-api/internal/handler"    // import the handlers that implement business logic
	"github.com/UGONES/church-site-api/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Register a POST endpoint to log out using a refresh token.  Logout does
	// not require JWT authentication; the handler accepts a JSON body
	// containing a `refresh_token` and will invalidate that token.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Any authenticated endpoint accepts both ADMIN and MEMBER roles.  The
	// middleware rejects requests with missing or unknown roles.
	auth.Use(middleware.RequireRole("ADMIN", "MEMBER"))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler.  This route lives
	// at the top level (outside of the protected group) so it does not
	// require a JWT.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The ContentHandler returns sanitized data for events,
// sermons, ministries and approved testimonials.  These routes do not apply
// any JWT or role middleware and are intended for guest visitors.  The
// optional middleware chain (typically a Redis response cache) is applied
// to every route in this group.
func RegisterPublic(e *echo.Echo, ct *handler.ContentHandler, mw ...echo.MiddlewareFunc) {
	pub := e.Group("/v1", mw...)
	// List upcoming events, newest start date last.
	pub.GET("/events", ct.ListEvents)
	// Event details including remaining capacity.
	pub.GET("/events/:id", ct.GetEvent)
	// Sermon archive, newest first.
	pub.GET("/sermons", ct.ListSermons)
	// Single sermon with its media links.
	pub.GET("/sermons/:id", ct.GetSermon)
	// All active ministries.
	pub.GET("/ministries", ct.ListMinistries)
	// Approved testimonials only.  Pending submissions stay hidden until an
	// administrator approves them.
	pub.GET("/testimonials", ct.ListTestimonials)
}

// RegisterMember registers endpoints available to any authenticated user
// (both MEMBER and ADMIN roles).  These cover RSVP management, favorites
// and testimonial submission.
func RegisterMember(e *echo.Echo, r *handler.RSVPHandler, f *handler.FavoriteHandler, ct *handler.ContentHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "MEMBER"))

	// RSVP lifecycle for a single event.
	g.POST("/events/:id/rsvp", r.Reserve)
	g.DELETE("/events/:id/rsvp", r.Cancel)
	g.GET("/events/:id/rsvp", r.Status)
	// All of the caller's non-cancelled registrations with event details.
	g.GET("/my-registrations", r.ListMine)

	// Favorites: add, remove and list.  Removal addresses the item by type
	// and id so the client does not need to track favorite row ids.
	g.POST("/favorites", f.Add)
	g.DELETE("/favorites/:type/:id", f.Remove)
	g.GET("/favorites", f.List)

	// Members may submit testimonials; they are held for moderation.
	g.POST("/testimonials", ct.SubmitTestimonial)
}

// RegisterAdmin registers management endpoints restricted to the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	// Event management.
	g.POST("/events", a.CreateEvent)
	g.PUT("/events/:id", a.UpdateEvent)
	g.DELETE("/events/:id", a.DeleteEvent)
	// Registration roster for an event, confirmed first then waiting then
	// cancelled, each in arrival order.
	g.GET("/events/:id/registrations", a.ListRegistrations)
	// Mark a confirmed registration as checked in once the event has started.
	g.POST("/events/:id/registrations/:rid/checkin", a.CheckIn)

	// Sermon management.
	g.POST("/sermons", a.CreateSermon)
	g.DELETE("/sermons/:id", a.DeleteSermon)

	// Ministry management.
	g.POST("/ministries", a.CreateMinistry)
	g.DELETE("/ministries/:id", a.DeleteMinistry)

	// Testimonial moderation.
	g.GET("/testimonials", a.ListAllTestimonials)
	g.POST("/testimonials/:id/approve", a.ApproveTestimonial)
	g.DELETE("/testimonials/:id", a.DeleteTestimonial)
}
