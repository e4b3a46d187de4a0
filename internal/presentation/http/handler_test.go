package httppresentation_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appAccount "github.com/boutiqa/storefront/internal/application/account"
	appCart "github.com/boutiqa/storefront/internal/application/cart"
	appCatalog "github.com/boutiqa/storefront/internal/application/catalog"
	appQuote "github.com/boutiqa/storefront/internal/application/quote"
	appReassort "github.com/boutiqa/storefront/internal/application/reassort"
	domCatalog "github.com/boutiqa/storefront/internal/domain/catalog"
	"github.com/boutiqa/storefront/internal/infrastructure/assets"
	"github.com/boutiqa/storefront/internal/infrastructure/id"
	"github.com/boutiqa/storefront/internal/infrastructure/localstore"
	"github.com/boutiqa/storefront/internal/infrastructure/memory"
	httppresentation "github.com/boutiqa/storefront/internal/presentation/http"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()

	productRepo := memory.NewProductRepository()
	productRepo.Seed(
		domCatalog.Product{
			ID:         "savon-lavande-250",
			Reference:  "SAV-LAV-250",
			Category:   "soins",
			Price:      domCatalog.Money{Amount: decimal.NewFromFloat(6.90), Currency: currency.EUR},
			StockUnits: 6,
			Translations: map[string]domCatalog.Text{
				"fr": {Name: "Savon à la lavande"},
				"en": {Name: "Lavender soap"},
			},
		},
	)
	stockRepo := memory.NewStockRepository()
	stockRepo.Set("savon-lavande-250", 6)

	idGen := id.NewUUIDGenerator()
	uploader, err := assets.NewDiskUploader(t.TempDir(), "/assets")
	require.NoError(t, err)

	accountSvc := appAccount.NewService(memory.NewAccountRepository(), idGen, uploader, nil, nil)
	cartSvc := appCart.NewService(stockRepo, localstore.NewMemory("cart", nil), accountSvc, 100, nil)
	catalogSvc, err := appCatalog.NewService(productRepo, "fr", []string{"fr", "en"}, nil)
	require.NoError(t, err)
	quoteSvc := appQuote.NewService(memory.NewQuoteRepository(), idGen, nil, nil)
	reassortSvc := appReassort.NewService(memory.NewReassortRepository(), memory.NewReassortHistoryRepository(), idGen, nil, nil)

	handler := httppresentation.NewHandler(cartSvc, catalogSvc, quoteSvc, accountSvc, reassortSvc, memory.NewNotificationRepository(), nil)
	return handler.Router()
}

func doJSON(t *testing.T, srv http.Handler, method, path, device string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if device != "" {
		req.Header.Set("X-Session-ID", device)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type cartBody struct {
	Owner string `json:"owner"`
	Lines []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
	} `json:"lines"`
	Total string `json:"total"`
}

type addItemBody struct {
	Status    string   `json:"status"`
	Requested int      `json:"requested"`
	Accepted  int      `json:"accepted"`
	Cart      cartBody `json:"cart"`
}

func addItemPayload(quantity int) map[string]any {
	return map[string]any{
		"product_id": "savon-lavande-250",
		"name":       "Savon à la lavande",
		"reference":  "SAV-LAV-250",
		"unit_price": "6.90",
		"quantity":   quantity,
	}
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartFlow(t *testing.T) {
	srv := newServer(t)

	// Full accept within stock.
	rec := doJSON(t, srv, http.MethodPost, "/cart/items", "dev-1", addItemPayload(5))
	require.Equal(t, http.StatusOK, rec.Code)
	added := decodeBody[addItemBody](t, rec)
	assert.Equal(t, "accepted", added.Status)
	assert.Equal(t, 5, added.Accepted)

	// Clamped to the remaining unit.
	rec = doJSON(t, srv, http.MethodPost, "/cart/items", "dev-1", addItemPayload(10))
	require.Equal(t, http.StatusOK, rec.Code)
	added = decodeBody[addItemBody](t, rec)
	assert.Equal(t, "partially_accepted", added.Status)
	assert.Equal(t, 1, added.Accepted)

	// Stock exhausted: conflict, cart unchanged.
	rec = doJSON(t, srv, http.MethodPost, "/cart/items", "dev-1", addItemPayload(1))
	require.Equal(t, http.StatusConflict, rec.Code)
	added = decodeBody[addItemBody](t, rec)
	assert.Equal(t, "rejected_out_of_stock", added.Status)
	require.Len(t, added.Cart.Lines, 1)
	assert.Equal(t, 6, added.Cart.Lines[0].Quantity)

	rec = doJSON(t, srv, http.MethodGet, "/cart", "dev-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeBody[cartBody](t, rec)
	assert.Equal(t, "guest", cart.Owner)
	assert.Equal(t, "41.40", cart.Total)

	// Quantity update and removal.
	rec = doJSON(t, srv, http.MethodPatch, "/cart/items/savon-lavande-250", "dev-1", map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/cart/items/savon-lavande-250", "dev-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/cart", "dev-1", nil)
	cart = decodeBody[cartBody](t, rec)
	assert.Empty(t, cart.Lines)
}

func TestCart_UpdateMissingLine(t *testing.T) {
	srv := newServer(t)
	rec := doJSON(t, srv, http.MethodPatch, "/cart/items/absent", "dev-1", map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_InvalidUnitPrice(t *testing.T) {
	srv := newServer(t)
	payload := addItemPayload(1)
	payload["unit_price"] = "free"
	rec := doJSON(t, srv, http.MethodPost, "/cart/items", "dev-1", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_SetOwner(t *testing.T) {
	srv := newServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/cart/items", "dev-1", addItemPayload(2))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/cart/owner", "dev-1", map[string]any{"identity_id": "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeBody[cartBody](t, rec)
	assert.Equal(t, "u1", cart.Owner)
	require.Len(t, cart.Lines, 1)

	// Logout comes back to an empty guest cart.
	rec = doJSON(t, srv, http.MethodPost, "/cart/owner", "dev-1", map[string]any{"identity_id": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeBody[cartBody](t, rec)
	assert.Equal(t, "guest", cart.Owner)
	assert.Empty(t, cart.Lines)

	// Logging back in restores the identity's cart.
	rec = doJSON(t, srv, http.MethodPost, "/cart/owner", "dev-1", map[string]any{"identity_id": "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeBody[cartBody](t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestCatalog(t *testing.T) {
	srv := newServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/catalog/products?locale=en", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody[[]map[string]any](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "Lavender soap", products[0]["name"])
	assert.Equal(t, "en", products[0]["locale"])

	rec = doJSON(t, srv, http.MethodGet, "/catalog/products/savon-lavande-250", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/catalog/products/absent", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuotes(t *testing.T) {
	srv := newServer(t)

	payload := map[string]any{
		"company_name": "Herboristerie Martin",
		"email":        "contact@herboristerie.example",
		"items": []map[string]any{
			{"product_id": "savon-lavande-250", "reference": "SAV-LAV-250", "quantity": 200},
		},
	}
	rec := doJSON(t, srv, http.MethodPost, "/quotes/", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "received", created["status"])

	// Validation failures map to 400 with the domain message.
	payload["items"] = []map[string]any{}
	rec = doJSON(t, srv, http.MethodPost, "/quotes/", "", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	failure := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "at least one item is required", failure["error"])
}

func TestAccounts(t *testing.T) {
	srv := newServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts/", "", map[string]any{"email": "client@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	acc := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "standard", acc["type"])
	assert.Equal(t, "validated", acc["status"])

	rec = doJSON(t, srv, http.MethodPost, "/accounts/", "", map[string]any{"email": "oops"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccounts_ProfessionalLifecycle(t *testing.T) {
	srv := newServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("email", "contact@herboristerie.example"))
	require.NoError(t, form.WriteField("company_name", "Herboristerie Martin"))
	require.NoError(t, form.WriteField("tax_id", "FR12345678901"))
	part, err := form.CreateFormFile("document", "kbis.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/accounts/professional", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	acc := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "professional", acc["type"])
	assert.Equal(t, "pending", acc["status"])
	assert.True(t, strings.HasPrefix(acc["document_url"].(string), "/assets/"))

	accountID := acc["id"].(string)
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/accounts/%s/validate", accountID), "", map[string]any{"approved": true})
	require.Equal(t, http.StatusOK, rec.Code)
	acc = decodeBody[map[string]any](t, rec)
	assert.Equal(t, "validated", acc["status"])

	// Re-validation of a settled account is rejected.
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/accounts/%s/validate", accountID), "", map[string]any{"approved": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifications_RequiresOwner(t *testing.T) {
	srv := newServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/notifications", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReassortConfigs(t *testing.T) {
	srv := newServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/reassort/configs", "", map[string]any{
		"account_id": "acc-1",
		"product_id": "savon-lavande-250",
		"quantity":   200,
		"interval":   "168h",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	cfg := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, cfg["active"])
	configID := cfg["id"].(string)

	rec = doJSON(t, srv, http.MethodGet, "/reassort/configs?account=acc-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	configs := decodeBody[[]map[string]any](t, rec)
	assert.Len(t, configs, 1)

	rec = doJSON(t, srv, http.MethodPut, "/reassort/configs/"+configID, "", map[string]any{"quantity": 50})
	require.Equal(t, http.StatusOK, rec.Code)
	cfg = decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(50), cfg["quantity"])

	rec = doJSON(t, srv, http.MethodGet, "/reassort/history?config="+configID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/reassort/configs/"+configID, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/reassort/configs/"+configID, "", map[string]any{"quantity": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A malformed interval never reaches the domain.
	rec = doJSON(t, srv, http.MethodPost, "/reassort/configs", "", map[string]any{
		"account_id": "acc-1",
		"product_id": "p1",
		"quantity":   10,
		"interval":   "weekly",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissingDeviceHeader(t *testing.T) {
	srv := newServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/cart/items", "", addItemPayload(1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
