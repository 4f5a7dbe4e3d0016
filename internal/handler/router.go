package handler

import (
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Router groups every handler with the auth middleware they run behind.
type Router struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Roles     *RoleHandler
	Catalog   *CatalogHandler
	Dashboard *DashboardHandler
	Movies    *ContentHandler[model.Movie]
	Series    *ContentHandler[model.Series]
	Episodes  *ContentHandler[model.Episode]
	Posts     *ContentHandler[model.Post]

	RequireAuth  fiber.Handler
	OptionalAuth fiber.Handler
}

// Mount registers the API routes on api.
func (r *Router) Mount(api fiber.Router) {
	// ============ AUTH ============
	auth := api.Group("/auth")
	auth.Post("/signup", r.Auth.Signup)
	auth.Post("/login", r.Auth.Login)
	auth.Post("/forgot-password", r.Auth.ForgotPassword)
	auth.Post("/reset-password", r.Auth.ResetPassword)
	auth.Post("/logout", r.RequireAuth, r.Auth.Logout)
	auth.Get("/me", r.RequireAuth, r.Auth.Me)
	auth.Patch("/me", r.RequireAuth, r.Auth.UpdateMe)

	// ============ CONTENT ============
	// Policies decide per requester; anonymous readers get published docs.
	r.Movies.Register(api.Group("/"+string(model.KindMovie), r.OptionalAuth))
	r.Series.Register(api.Group("/"+string(model.KindSeries), r.OptionalAuth))
	r.Episodes.Register(api.Group("/"+string(model.KindEpisode), r.OptionalAuth))
	r.Posts.Register(api.Group("/"+string(model.KindPost), r.OptionalAuth))

	// ============ TAXONOMY ============
	api.Get("/genres", r.OptionalAuth, r.Catalog.GetGenres)
	casts := api.Group("/casts", r.OptionalAuth)
	casts.Get("/", r.Catalog.GetCasts)
	casts.Get("/:id", r.Catalog.GetCast)
	casts.Post("/", r.Catalog.CreateCast)
	casts.Put("/:id", r.Catalog.UpdateCast)
	casts.Delete("/:id", r.Catalog.DeleteCast)

	api.Get("/roles", r.Roles.GetRoles)

	// ============ ADMIN PANEL ============
	admin := []fiber.Handler{r.RequireAuth, middleware.RequireRole(model.RoleAdmin)}

	users := api.Group("/users", admin...)
	users.Get("/", r.Users.GetUsers)
	users.Get("/:id", r.Users.GetUser)
	users.Post("/", r.Users.CreateUser)
	users.Put("/:id", r.Users.UpdateUser)
	users.Delete("/:id", r.Users.DeleteUser)

	dashboard := api.Group("/dashboard", admin...)
	dashboard.Get("/stats", r.Dashboard.GetDashboardStats)
}
