package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bartab-api/internal/application/service"
	"github.com/sangkips/bartab-api/internal/config"
	"github.com/sangkips/bartab-api/internal/infrastructure/repository"
	"github.com/sangkips/bartab-api/internal/presentation/http/handler"
	"github.com/sangkips/bartab-api/internal/presentation/http/middleware"
	"github.com/sangkips/bartab-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	clock := func() time.Time { return now }
	archive := repository.NewNullSessionArchive()
	clientRepo := repository.NewClientRepository()
	productRepo := repository.NewProductRepository()

	clientService := service.NewClientService(clientRepo, archive, logger, clock)
	analyticsService := service.NewAnalyticsService(repository.NewAnalyticsRepository(clientRepo), clientService, clock)

	h := &Handlers{
		Client: handler.NewClientHandler(
			clientService,
			service.NewTabService(clientRepo, productRepo, logger, clock),
			service.NewSettlementService(clientRepo, archive, logger, clock),
			analyticsService,
		),
		Product:   handler.NewProductHandler(service.NewProductService(productRepo, clientRepo, logger, clock)),
		Analytics: handler.NewAnalyticsHandler(analyticsService, service.NewExportService(analyticsService, clientRepo, logger), clock),
		Receipt:   handler.NewReceiptHandler(service.NewReceiptService(clientRepo, printer.NewNullPrinter(), "The Tap Room", 32, logger)),
	}

	cfg := &config.Config{
		App:         config.AppConfig{Name: "bartab-api"},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}

	return &testServer{
		t: t,
		router: Setup(h, &Deps{
			Cfg:             cfg,
			IdempotencyRepo: repository.NewMemoryIdempotencyRepository(),
			Logger:          logger,
		}),
	}
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

type idOnly struct {
	ID string `json:"id"`
}

func (s *testServer) createProduct(name, category string, price float64) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/products", gin.H{"name": name, "category": category, "price": price}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[idOnly](s.t, w).ID
}

func (s *testServer) createClient(name string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/clients", gin.H{"name": name}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[idOnly](s.t, w).ID
}

func (s *testServer) addItem(clientID, productID string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/clients/"+clientID+"/items", gin.H{"product_id": productID}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
}

func withKey(key string) map[string]string {
	return map[string]string{middleware.IdempotencyKeyHeader: key}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"bartab-api"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestSettleSplitPaymentAndReplay(t *testing.T) {
	s := newTestServer(t)
	ipa := s.createProduct("Craft IPA", "Beer", 7.5)
	pretzel := s.createProduct("Pretzel Bites", "Snack", 5)
	ada := s.createClient("Ada")
	s.addItem(ada, ipa)
	s.addItem(ada, ipa)
	s.addItem(ada, pretzel)

	body := gin.H{"payments": []gin.H{
		{"method": "Cash", "amount": 12},
		{"method": "Credit Card", "amount": 8},
	}}
	w := s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", body, withKey("settle-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	type settled struct {
		Session struct {
			Total     float64 `json:"total"`
			Purchases []struct {
				Name          string  `json:"name"`
				PaymentMethod string  `json:"payment_method"`
				AmountPaid    float64 `json:"amount_paid"`
				Quantity      float64 `json:"quantity"`
			} `json:"purchases"`
		} `json:"session"`
		Client struct {
			Items       []json.RawMessage `json:"items"`
			IsArchived  bool              `json:"is_archived"`
			TabOpenedAt *time.Time        `json:"tab_opened_at"`
		} `json:"client"`
	}
	res := decode[settled](t, w)
	assert.Equal(t, 20.0, res.Session.Total)
	require.Len(t, res.Session.Purchases, 3)
	assert.Equal(t, "Cash", res.Session.Purchases[0].PaymentMethod)
	assert.Equal(t, 1.6, res.Session.Purchases[0].Quantity)
	assert.Equal(t, "Credit Card", res.Session.Purchases[2].PaymentMethod)
	assert.Empty(t, res.Client.Items)
	assert.True(t, res.Client.IsArchived)
	assert.Nil(t, res.Client.TabOpenedAt)

	replay := s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", body, withKey("settle-1"))
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, w.Body.String(), replay.Body.String())

	w = s.do(http.MethodGet, "/api/v1/clients/"+ada+"/visits", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, w), 1)

	w = s.do(http.MethodGet, "/api/v1/analytics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[struct {
		TotalRevenue  float64 `json:"total_revenue"`
		SettledVisits int     `json:"settled_visits"`
	}](t, w)
	assert.Equal(t, 20.0, summary.TotalRevenue)
	assert.Equal(t, 1, summary.SettledVisits)
}

func TestSettleRequiresIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	ada := s.createClient("Ada")

	w := s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", gin.H{"payments": []gin.H{{"method": "Cash", "amount": 1}}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettleRejectedThenRetriedWithSameKey(t *testing.T) {
	s := newTestServer(t)
	lager := s.createProduct("Lager", "Beer", 6)
	ada := s.createClient("Ada")
	s.addItem(ada, lager)

	under := gin.H{"payments": []gin.H{{"method": "Cash", "amount": 5.99}}}
	w := s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", under, withKey("k"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	exact := gin.H{"payments": []gin.H{{"method": "Debit Card", "amount": 6}}}
	w = s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", exact, withKey("k"))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
}

func TestSettleBadPayload(t *testing.T) {
	s := newTestServer(t)
	ada := s.createClient("Ada")

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"unknown method", gin.H{"payments": []gin.H{{"method": "Bitcoin", "amount": 1}}}, http.StatusBadRequest},
		{"missing amount", gin.H{"payments": []gin.H{{"method": "Cash"}}}, http.StatusBadRequest},
		{"no payments", gin.H{"payments": []gin.H{}}, http.StatusUnprocessableEntity},
		{"empty tab", gin.H{"payments": []gin.H{{"method": "Cash", "amount": 0}}}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", tt.body, withKey(tt.name))
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestDeleteClientRequiresConfirmation(t *testing.T) {
	s := newTestServer(t)
	ada := s.createClient("Ada")

	w := s.do(http.MethodDelete, "/api/v1/clients/"+ada, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/clients/"+ada+"?confirm=true", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]bool{"removed": true}, decode[map[string]bool](t, w))

	w = s.do(http.MethodGet, "/api/v1/clients/"+ada, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/clients/"+ada+"?confirm=true", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]bool{"removed": false}, decode[map[string]bool](t, w))
}

func TestNotFoundAndMalformedIDs(t *testing.T) {
	s := newTestServer(t)
	ada := s.createClient("Ada")
	missing := uuid.New().String()

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/clients/not-a-uuid", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/clients/"+missing, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/products/"+missing, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/clients/"+ada+"/items", gin.H{"product_id": missing}, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/clients/"+missing+"/stats", nil, nil).Code)
}

func TestProductUpdateReachesOpenTabs(t *testing.T) {
	s := newTestServer(t)
	stout := s.createProduct("Stout", "Beer", 8)
	ada := s.createClient("Ada")
	s.addItem(ada, stout)

	w := s.do(http.MethodPut, "/api/v1/products/"+stout, gin.H{"price": 9}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[struct {
		LinesUpdated int `json:"lines_updated"`
	}](t, w).LinesUpdated)

	w = s.do(http.MethodGet, "/api/v1/clients/"+ada, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	client := decode[struct {
		TabTotal float64 `json:"tab_total"`
	}](t, w)
	assert.Equal(t, 9.0, client.TabTotal)
}

func TestExports(t *testing.T) {
	s := newTestServer(t)
	wings := s.createProduct("Chicken Wings", "Food", 12)
	ada := s.createClient("Ada")
	s.addItem(ada, wings)
	w := s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", gin.H{"payments": []gin.H{{"method": "Cash", "amount": 12}}}, withKey("x"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/analytics/purchases.csv", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="bartab-purchases-20260314-200000.csv"`)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Chicken Wings")

	w = s.do(http.MethodGet, "/api/v1/analytics/export.xlsx", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestReceiptWithoutPrinter(t *testing.T) {
	s := newTestServer(t)
	lager := s.createProduct("Lager", "Beer", 6)
	ada := s.createClient("Ada")
	s.addItem(ada, lager)
	s.addItem(ada, lager)
	w := s.do(http.MethodPost, "/api/v1/clients/"+ada+"/settle", gin.H{"payments": []gin.H{{"method": "Cash", "amount": 12}}}, withKey("r"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sessionID := decode[struct {
		Session idOnly `json:"session"`
	}](t, w).Session.ID

	w = s.do(http.MethodPost, "/api/v1/clients/"+ada+"/visits/"+sessionID+"/receipt", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[struct {
		Printed bool `json:"printed"`
		Receipt struct {
			Venue string  `json:"venue"`
			Total float64 `json:"total"`
			Lines []struct {
				Name     string `json:"name"`
				Quantity int    `json:"quantity"`
			} `json:"lines"`
		} `json:"receipt"`
	}](t, w)
	assert.False(t, res.Printed)
	assert.Equal(t, "The Tap Room", res.Receipt.Venue)
	assert.Equal(t, 12.0, res.Receipt.Total)
	require.Len(t, res.Receipt.Lines, 1)
	assert.Equal(t, 2, res.Receipt.Lines[0].Quantity)

	w = s.do(http.MethodPost, "/api/v1/clients/"+ada+"/visits/"+uuid.New().String()+"/receipt", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/printer/status", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"configured":false,"ready":false,"type":"none"}`, string(decodeRaw(t, w)))
}

func decodeRaw(t *testing.T, w *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}
