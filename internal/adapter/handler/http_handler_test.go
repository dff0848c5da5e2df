package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/backend"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const (
	gundamID  = "65a1b2c3d4e5f6a7b8c9d0e1"
	zakuID    = "65a1b2c3d4e5f6a7b8c9d0e2"
	missingID = "65a1b2c3d4e5f6a7b8c9d0ff"
)

// fakeBackend is an in-memory stand-in for the REST backend.
type fakeBackend struct {
	mu         sync.Mutex
	products   map[string]domain.Product
	users      map[string]domain.User
	deliveries []domain.Delivery
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: map[string]domain.Product{
			gundamID: {ID: gundamID, Name: domain.Ptr("RG Gundam"), Price: domain.Ptr(int64(100000)), Type: domain.ProductTypeAvailable},
			zakuID:   {ID: zakuID, Name: domain.Ptr("MG Zaku"), Price: domain.Ptr(int64(500000)), Type: domain.ProductTypePreorder},
		},
		users: map[string]domain.User{
			"alice": {ID: "u1", Username: "alice", PasswordHash: "Secret!23", Role: domain.RoleCustomer},
			"root":  {ID: "a1", Username: "root", PasswordHash: "Admin!234", Role: domain.RoleAdmin},
		},
	}
}

func (f *fakeBackend) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]domain.Product, 0, len(f.products))
		for _, p := range f.products {
			out = append(out, p)
		}
		json.NewEncoder(w).Encode(out)
	}).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		p, ok := f.products[mux.Vars(r)["id"]]
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(p)
	}).Methods(http.MethodGet)
	r.HandleFunc("/users/search/by-username", func(w http.ResponseWriter, r *http.Request) {
		u, ok := f.users[r.URL.Query().Get("username")]
		if !ok {
			w.Write([]byte("null"))
			return
		}
		json.NewEncoder(w).Encode(u)
	}).Methods(http.MethodGet)
	r.HandleFunc("/deliveries", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.deliveries)
	}).Methods(http.MethodGet)
	r.HandleFunc("/deliveries", func(w http.ResponseWriter, r *http.Request) {
		var d domain.Delivery
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, `{"error":"bad body"}`, http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		d.ID = "65a1b2c3d4e5f6a7b8c9d1e0"
		f.deliveries = append(f.deliveries, d)
		json.NewEncoder(w).Encode(d)
	}).Methods(http.MethodPost)
	r.HandleFunc("/reviews/product/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}).Methods(http.MethodGet)
	return r
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	backend *fakeBackend
	api     *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fb := newFakeBackend()
	backendServer := httptest.NewServer(fb.router())
	t.Cleanup(backendServer.Close)

	logger := zap.NewNop()
	client, err := backend.New(backend.Config{BaseURL: backendServer.URL, Timeout: 5 * time.Second}, logger)
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	idempotency := storage.NewMemoryAdapter()

	svcs := Services{
		Auth:    service.NewAuthService(client, logger),
		Catalog: service.NewCatalogService(client, logger),
		Cart:    service.NewCartService(domain.NewCart(), client, client, idempotency, logger),
		Orders:  service.NewOrderService(client, logger),
		Reviews: service.NewReviewService(client, logger),
		Stats:   service.NewStatsService(client, nil, logger),
	}
	health := NewHealthHandler(map[string]Pinger{"backend": client, "idempotency": idempotency}, logger)
	h := NewHTTPHandler(svcs, health, NewTokenManager("test-secret", time.Hour), logger)

	api := httptest.NewServer(h.Router())
	t.Cleanup(api.Close)

	return &testEnv{backend: fb, api: api}
}

func (e *testEnv) call(t *testing.T, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.api.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	status, resp := e.call(t, http.MethodPost, "/api/login", "", LoginHTTPRequest{Username: username, Password: password})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d (%s)", username, status, resp.Message)
	}
	var data LoginHTTPResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return data.Token
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return v
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.call(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || !resp.Success {
		t.Errorf("expected healthy, got %d %+v", status, resp)
	}
}

func TestCartEndpoints(t *testing.T) {
	env := newTestEnv(t)

	env.call(t, http.MethodPost, "/api/cart/items/"+gundamID, "", nil)
	env.call(t, http.MethodPost, "/api/cart/items/"+zakuID, "", nil)
	status, resp := env.call(t, http.MethodPost, "/api/cart/items/"+zakuID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("add failed: %d %s", status, resp.Message)
	}

	view := decodeData[domain.CartView](t, resp)
	if view.TotalQty != 3 || view.TotalAmount != 200000 {
		t.Errorf("unexpected totals %d/%d", view.TotalQty, view.TotalAmount)
	}
	if view.Lines[1].DisplayName != "MG Zaku (PreOrder)" {
		t.Errorf("unexpected name %q", view.Lines[1].DisplayName)
	}

	_, resp = env.call(t, http.MethodDelete, "/api/cart/items/"+zakuID, "", nil)
	view = decodeData[domain.CartView](t, resp)
	if view.TotalAmount != 150000 {
		t.Errorf("expected 150000 after remove, got %d", view.TotalAmount)
	}

	_, resp = env.call(t, http.MethodGet, "/api/cart", "", nil)
	view = decodeData[domain.CartView](t, resp)
	if view.TotalAmountLabel != "150.000 ₫" {
		t.Errorf("unexpected label %q", view.TotalAmountLabel)
	}
}

func TestCartAdd_Errors(t *testing.T) {
	env := newTestEnv(t)

	if status, _ := env.call(t, http.MethodPost, "/api/cart/items/"+missingID, "", nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for missing product, got %d", status)
	}
	if status, _ := env.call(t, http.MethodPost, "/api/cart/items/not-an-id", "", nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", status)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.call(t, http.MethodPost, "/api/login", "", LoginHTTPRequest{Username: "alice", Password: "nope"})
	if status != http.StatusUnauthorized || resp.Success {
		t.Errorf("expected 401, got %d %+v", status, resp)
	}
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	addr := validTestAddress()

	if status, _ := env.call(t, http.MethodPost, "/api/checkout", "", service.CheckoutRequest{Address: addr}); status != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", status)
	}

	token := env.login(t, "alice", "Secret!23")

	if status, _ := env.call(t, http.MethodPost, "/api/checkout", token, service.CheckoutRequest{Address: addr}); status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for empty cart, got %d", status)
	}
	if status, _ := env.call(t, http.MethodPost, "/api/checkout", token, service.CheckoutRequest{}); status != http.StatusBadRequest {
		t.Errorf("expected 400 for missing address, got %d", status)
	}

	env.call(t, http.MethodPost, "/api/cart/items/"+gundamID, "", nil)
	env.call(t, http.MethodPost, "/api/cart/items/"+zakuID, "", nil)

	status, resp := env.call(t, http.MethodPost, "/api/checkout", token, service.CheckoutRequest{RequestID: "req-1", Address: addr})
	if status != http.StatusCreated {
		t.Fatalf("checkout failed: %d %s", status, resp.Message)
	}

	env.backend.mu.Lock()
	if len(env.backend.deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(env.backend.deliveries))
	}
	d := env.backend.deliveries[0]
	env.backend.mu.Unlock()
	if d.TotalPrice == nil || *d.TotalPrice != 150000 {
		t.Errorf("expected total 150000, got %v", d.TotalPrice)
	}
	if d.Username != "alice" || d.Status != domain.OrderStatusPending {
		t.Errorf("unexpected delivery %+v", d)
	}

	_, resp = env.call(t, http.MethodGet, "/api/cart", "", nil)
	if view := decodeData[domain.CartView](t, resp); view.TotalQty != 0 {
		t.Errorf("expected empty cart after checkout, got %d", view.TotalQty)
	}

	buyNow := service.CheckoutRequest{RequestID: "req-2", Address: addr, BuyNowProductID: zakuID}
	if status, _ := env.call(t, http.MethodPost, "/api/checkout", token, buyNow); status != http.StatusCreated {
		t.Errorf("buy now failed: %d", status)
	}
	if status, _ := env.call(t, http.MethodPost, "/api/checkout", token, buyNow); status != http.StatusConflict {
		t.Errorf("expected 409 for duplicate request, got %d", status)
	}

	status, resp = env.call(t, http.MethodGet, "/api/orders", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list orders failed: %d", status)
	}
	if orders := decodeData[[]domain.Delivery](t, resp); len(orders) != 2 {
		t.Errorf("expected 2 orders, got %d", len(orders))
	}
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "alice", "Secret!23")
	if status, _ := env.call(t, http.MethodGet, "/api/stats", token, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for customer, got %d", status)
	}

	token = env.login(t, "root", "Admin!234")
	status, resp := env.call(t, http.MethodGet, "/api/stats", token, nil)
	if status != http.StatusOK {
		t.Fatalf("stats failed: %d %s", status, resp.Message)
	}
	report := decodeData[domain.SalesReport](t, resp)
	if report.TotalOrders != 0 {
		t.Errorf("expected no orders, got %d", report.TotalOrders)
	}
}

func TestStatsHistory_WithoutReportStore(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "root", "Admin!234")

	if status, _ := env.call(t, http.MethodGet, "/api/stats/history?days=abc", token, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad days value, got %d", status)
	}
	if status, _ := env.call(t, http.MethodGet, "/api/stats/history?days=7", token, nil); status != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a report store, got %d", status)
	}
}

func TestTokenInvalidAfterLogout(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "alice", "Secret!23")
	if status, _ := env.call(t, http.MethodPost, "/api/logout", token, nil); status != http.StatusOK {
		t.Fatalf("logout failed: %d", status)
	}

	status, resp := env.call(t, http.MethodGet, "/api/orders", token, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
	if !strings.Contains(resp.Message, "session has ended") {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	session := domain.Session{UserID: "u1", Username: "alice", Role: domain.RoleCustomer}

	token, err := tm.Issue(session)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != session {
		t.Errorf("expected %+v, got %+v", session, got)
	}

	if _, err := NewTokenManager("other", time.Hour).Parse(token); err == nil {
		t.Error("expected signature error")
	}

	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := tm.Parse(token); err == nil {
		t.Error("expected expired token error")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrNotLoggedIn, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{backend.ErrNotFound, http.StatusNotFound},
		{service.ErrUsernameTaken, http.StatusConflict},
		{service.ErrEmptyCart, http.StatusUnprocessableEntity},
		{service.ErrHistoryDisabled, http.StatusServiceUnavailable},
		{&backend.APIError{StatusCode: 500, Message: "boom"}, http.StatusBadGateway},
		{http.ErrHandlerTimeout, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func validTestAddress() domain.Address {
	return domain.Address{Recipient: "Alice", Phone: "0900000000", Street: "1 Le Loi", City: "Ho Chi Minh"}
}
