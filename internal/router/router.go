package router

import (
	"net/http"

	"stylecore/internal/handler"
	"stylecore/internal/middleware"

	"github.com/rs/zerolog"
)

// BackendReporter reports which storage backend serves requests.
type BackendReporter interface {
	Mode() string
}

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Orders   *handler.OrderHandler
	Users    *handler.UserHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	backend BackendReporter,
	limiter *middleware.RateLimiter,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	user := middleware.RequireUser(logger)
	owner := middleware.APIKeyAuth(apiKey, logger)
	identify := middleware.IdentifyOwner(apiKey)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "backend": "` + backend.Mode() + `"}`))
	})

	// Catalogue: public reads, owner writes.
	mux.Handle("GET /api/products", identify(http.HandlerFunc(h.Products.List)))
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)
	mux.Handle("POST /api/products", owner(http.HandlerFunc(h.Products.Create)))
	mux.Handle("PATCH /api/products/{id}", owner(http.HandlerFunc(h.Products.Update)))
	mux.Handle("PUT /api/products/{id}", owner(http.HandlerFunc(h.Products.Update)))
	mux.Handle("DELETE /api/products/{id}", owner(http.HandlerFunc(h.Products.Delete)))

	mux.Handle("GET /api/cart", user(http.HandlerFunc(h.Cart.Get)))
	mux.Handle("POST /api/cart/items", user(http.HandlerFunc(h.Cart.AddItem)))
	mux.Handle("PUT /api/cart/items/{productId}", user(http.HandlerFunc(h.Cart.UpdateItem)))
	mux.Handle("DELETE /api/cart/items/{productId}", user(http.HandlerFunc(h.Cart.RemoveItem)))

	mux.Handle("GET /api/wishlist", user(http.HandlerFunc(h.Cart.GetWishlist)))
	mux.Handle("POST /api/wishlist", user(http.HandlerFunc(h.Cart.AddToWishlist)))
	mux.Handle("DELETE /api/wishlist/{productId}", user(http.HandlerFunc(h.Cart.RemoveFromWishlist)))

	mux.Handle("POST /api/orders", user(http.HandlerFunc(h.Orders.Create)))
	mux.Handle("GET /api/orders", user(http.HandlerFunc(h.Orders.ListMine)))
	mux.Handle("GET /api/orders/{id}", identify(user(http.HandlerFunc(h.Orders.GetByID))))
	mux.Handle("GET /api/admin/orders", owner(http.HandlerFunc(h.Orders.ListAll)))
	mux.Handle("PUT /api/admin/orders/{id}/status", owner(http.HandlerFunc(h.Orders.UpdateStatus)))
	mux.Handle("POST /api/admin/orders/{id}/payment", owner(http.HandlerFunc(h.Orders.RecordPayment)))

	mux.HandleFunc("POST /api/users/register", h.Users.Register)
	mux.HandleFunc("POST /api/users/login", h.Users.Login)
	mux.HandleFunc("POST /api/users/password/forgot", h.Users.ForgotPassword)
	mux.HandleFunc("POST /api/users/password/reset", h.Users.ResetPassword)
	mux.Handle("GET /api/users/me", user(http.HandlerFunc(h.Users.GetProfile)))
	mux.Handle("PATCH /api/users/me", user(http.HandlerFunc(h.Users.UpdateProfile)))
	mux.Handle("DELETE /api/users/me", user(http.HandlerFunc(h.Users.DeleteAccount)))
	mux.Handle("POST /api/users/me/otp", user(http.HandlerFunc(h.Users.RequestOTP)))
	mux.Handle("POST /api/users/me/otp/verify", user(http.HandlerFunc(h.Users.VerifyOTP)))
	mux.Handle("GET /api/users/me/addresses", user(http.HandlerFunc(h.Users.ListAddresses)))
	mux.Handle("POST /api/users/me/addresses", user(http.HandlerFunc(h.Users.AddAddress)))
	mux.Handle("DELETE /api/users/me/addresses/{id}", user(http.HandlerFunc(h.Users.DeleteAddress)))

	// Refresh tokens are recorded by the auth proxy, which holds the owner key.
	mux.Handle("POST /api/users/me/tokens", owner(user(http.HandlerFunc(h.Users.StoreRefreshToken))))
	mux.Handle("DELETE /api/users/me/tokens", owner(user(http.HandlerFunc(h.Users.RevokeRefreshToken))))

	// Apply middleware in order: Recovery -> Logging -> CORS -> RateLimit
	var handler http.Handler = mux
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
