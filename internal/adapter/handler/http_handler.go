package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/backend"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService
	Reviews *service.ReviewService
	Stats   *service.StatsService
}

type HTTPHandler struct {
	auth    *service.AuthService
	catalog *service.CatalogService
	cart    *service.CartService
	orders  *service.OrderService
	reviews *service.ReviewService
	stats   *service.StatsService
	health  *HealthHandler
	tokens  *TokenManager
	logger  *zap.Logger
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginHTTPRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginHTTPResponse struct {
	Token   string         `json:"token"`
	Session domain.Session `json:"session"`
}

type StatusHTTPRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type ReviewHTTPRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReplyHTTPRequest struct {
	Content string `json:"content"`
}

func NewHTTPHandler(svcs Services, health *HealthHandler, tokens *TokenManager, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		auth:    svcs.Auth,
		catalog: svcs.Catalog,
		cart:    svcs.Cart,
		orders:  svcs.Orders,
		reviews: svcs.Reviews,
		stats:   svcs.Stats,
		health:  health,
		tokens:  tokens,
		logger:  logger,
	}
}

// Router builds the HTTP routes.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(h))
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", h.requireSession(h.Logout)).Methods(http.MethodPost)
	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/available", h.UsernameAvailable).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.requireSession(h.Profile)).Methods(http.MethodGet)

	// Catalog
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.requireAdmin(h.CreateProduct)).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.requireAdmin(h.UpdateProduct)).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.requireAdmin(h.DeleteProduct)).Methods(http.MethodDelete)

	// Cart
	api.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart/items/{id}", h.AddToCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", h.RemoveFromCart).Methods(http.MethodDelete)
	api.HandleFunc("/checkout", h.requireSession(h.Checkout)).Methods(http.MethodPost)

	// Orders
	api.HandleFunc("/orders", h.requireSession(h.ListOrders)).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/status", h.requireAdmin(h.UpdateOrderStatus)).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}/received", h.requireSession(h.ConfirmReceived)).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.requireSession(h.DeleteOrder)).Methods(http.MethodDelete)

	// Reviews
	api.HandleFunc("/products/{id}/reviews", h.optionalSession(h.ListReviews)).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/reviews", h.requireSession(h.SubmitReview)).Methods(http.MethodPost)
	api.HandleFunc("/reviews/{id}/replies", h.requireSession(h.ReplyToReview)).Methods(http.MethodPost)

	// Stats
	api.HandleFunc("/stats", h.requireAdmin(h.Stats)).Methods(http.MethodGet)
	api.HandleFunc("/stats/history", h.requireAdmin(h.StatsHistory)).Methods(http.MethodGet)

	return r
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginHTTPRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	token, err := h.tokens.Issue(session)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: LoginHTTPResponse{Token: token, Session: session}})
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "logged out"})
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	user.PasswordHash = ""
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "registered", Data: user})
}

func (h *HTTPHandler) UsernameAvailable(w http.ResponseWriter, r *http.Request) {
	available, err := h.auth.UsernameAvailable(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]bool{"available": available}})
}

func (h *HTTPHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Profile(r.Context(), SessionFrom(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.catalog.List(r.Context(), domain.ProductFilter{
		Search: q.Get("search"),
		Window: domain.TimeWindow(q.Get("window")),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: products})
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: detail})
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if !decode(w, r, &in) {
		return
	}

	product, err := h.catalog.Create(r.Context(), SessionFrom(r.Context()), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: product})
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if !decode(w, r, &in) {
		return
	}

	if err := h.catalog.Update(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"], in); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "product updated"})
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "product deleted"})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.cart.View()})
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.Add(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: view})
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.cart.Remove(mux.Vars(r)["id"])})
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.cart.Checkout(r.Context(), SessionFrom(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "order placed successfully", Data: result})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), SessionFrom(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: orders})
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusHTTPRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"], req.Status); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: req.Status.Label()})
}

func (h *HTTPHandler) ConfirmReceived(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.ConfirmReceived(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: domain.OrderStatusDelivered.Label()})
}

func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "order deleted"})
}

func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews := h.reviews.List(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, Response{Success: true, Data: reviews})
}

func (h *HTTPHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewHTTPRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.reviews.Submit(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"], req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "review submitted"})
}

func (h *HTTPHandler) ReplyToReview(w http.ResponseWriter, r *http.Request) {
	var req ReplyHTTPRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.reviews.Reply(r.Context(), SessionFrom(r.Context()), mux.Vars(r)["id"], req.Content); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "reply posted"})
}

func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.stats.Report(r.Context(), SessionFrom(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: report})
}

// StatsHistory serves the exported revenue buckets; ?days=N picks the window.
func (h *HTTPHandler) StatsHistory(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, fmt.Errorf("%w: days must be a number", service.ErrValidation))
			return
		}
		days = n
	}

	history, err := h.stats.History(r.Context(), SessionFrom(r.Context()), days)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: history})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := h.health.Status(r.Context())
	status := http.StatusOK
	for _, ok := range checks {
		if !ok {
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, Response{Success: status == http.StatusOK, Data: checks})
}

// statusFor maps service and backend errors to HTTP status codes.
func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidReview),
		errors.Is(err, service.ErrEmptyReply),
		errors.Is(err, backend.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrCannotConfirm):
		return http.StatusForbidden
	case errors.Is(err, backend.ErrNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()

	var apiErr *backend.APIError
	switch {
	case status == http.StatusInternalServerError:
		h.logger.Error("request failed", zap.Error(err))
		message = "internal error"
	case errors.As(err, &apiErr):
		h.logger.Warn("backend rejected request", zap.Int("backend_status", apiErr.StatusCode), zap.Error(err))
		message = apiErr.Message
	}
	writeJSON(w, status, Response{Success: false, Message: message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
