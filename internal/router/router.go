package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-storefront/internal/config"
	"go-storefront/internal/handler"
	"go-storefront/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Cart    *handler.CartHandler
	Product *handler.ProductHandler
	Page    *handler.PageHandler
}

func New(cfg *config.Config, session *middleware.SessionMiddleware, h Handlers, healthCheck func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimit.Handler)
	r.Use(session.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if healthCheck != nil {
			if err := healthCheck(req.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages. /cart sits in the protected set; the login and signup
	// pages must stay reachable for the redirect flow to terminate.
	r.Get("/cart", h.Page.CartPage)
	r.Get("/auth/login", h.Page.LoginPage)
	r.Get("/auth/signup", h.Page.SignupPage)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.Auth.Signup)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/logout", h.Auth.Logout)
			auth.Get("/me", h.Auth.Me)
		})

		api.Route("/cart", func(cart chi.Router) {
			cart.Get("/", h.Cart.Get)
			cart.Post("/", h.Cart.AddItem)
			cart.Put("/", h.Cart.UpdateLine)
			cart.Delete("/", h.Cart.RemoveLine)
			cart.Get("/checkout", h.Cart.Checkout)
		})

		api.Get("/products", h.Product.List)
		api.Get("/products/{handle}", h.Product.Get)
	})

	return r
}
