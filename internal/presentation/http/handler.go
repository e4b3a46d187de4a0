package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appAccount "github.com/boutiqa/storefront/internal/application/account"
	appCart "github.com/boutiqa/storefront/internal/application/cart"
	appCatalog "github.com/boutiqa/storefront/internal/application/catalog"
	appQuote "github.com/boutiqa/storefront/internal/application/quote"
	appReassort "github.com/boutiqa/storefront/internal/application/reassort"
	domAccount "github.com/boutiqa/storefront/internal/domain/account"
	domCart "github.com/boutiqa/storefront/internal/domain/cart"
	domCatalog "github.com/boutiqa/storefront/internal/domain/catalog"
	domNotification "github.com/boutiqa/storefront/internal/domain/notification"
	domQuote "github.com/boutiqa/storefront/internal/domain/quote"
	domReassort "github.com/boutiqa/storefront/internal/domain/reassort"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	componentHTTPHandler = "http_server"
	maxDocumentBytes     = 10 << 20
)

type Handler struct {
	carts         *appCart.Service
	catalog       *appCatalog.Service
	quotes        *appQuote.Service
	accounts      *appAccount.Service
	reassorts     *appReassort.Service
	notifications domNotification.Repository

	log observability.Logger
	tel observability.Telemetry
}

func NewHandler(
	carts *appCart.Service,
	catalog *appCatalog.Service,
	quotes *appQuote.Service,
	accounts *appAccount.Service,
	reassorts *appReassort.Service,
	notifications domNotification.Repository,
	tel observability.Telemetry,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		carts:         carts,
		catalog:       catalog,
		quotes:        quotes,
		accounts:      accounts,
		reassorts:     reassorts,
		notifications: notifications,
		log:           tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:           tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Trace → request logger → HTTP metrics → access log → handler.
	r.Use(h.withTrace, h.withRequestLogger, h.withHTTPMetrics, h.withAccessLog)

	r.Get("/health", h.handleHealth)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleGetCart)
		r.Delete("/", h.handleClearCart)
		r.Post("/items", h.handleAddItem)
		r.Patch("/items/{productID}", h.handleUpdateQuantity)
		r.Delete("/items/{productID}", h.handleRemoveItem)
		r.Post("/owner", h.handleSetOwner)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)
	})

	r.Route("/quotes", func(r chi.Router) {
		r.Post("/", h.handleSubmitQuote)
		r.Get("/", h.handleListQuotes)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.handleRegisterStandard)
		r.Post("/professional", h.handleRegisterProfessional)
		r.Post("/{id}/validate", h.handleValidateAccount)
	})

	r.Get("/notifications", h.handleListNotifications)

	r.Route("/reassort", func(r chi.Router) {
		r.Post("/configs", h.handleCreateReassort)
		r.Get("/configs", h.handleListReassort)
		r.Put("/configs/{id}", h.handleUpdateReassort)
		r.Delete("/configs/{id}", h.handleDeleteReassort)
		r.Get("/history", h.handleReassortHistory)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- cart ---

type lineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageRef  string `json:"image_ref,omitempty"`
}

type cartResponse struct {
	Owner string    `json:"owner"`
	Lines []lineDTO `json:"lines"`
	Total string    `json:"total"`
}

func toCartResponse(s appCart.Snapshot) cartResponse {
	lines := make([]lineDTO, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, lineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			Reference: l.Reference,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
			ImageRef:  l.ImageRef,
		})
	}
	return cartResponse{
		Owner: s.Owner.String(),
		Lines: lines,
		Total: s.Total.String(),
	}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.carts.Get(r.Context(), deviceID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(snapshot))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
	UnitPrice string `json:"unit_price"`
	ImageRef  string `json:"image_ref"`
	Quantity  int    `json:"quantity"`
}

type addItemResponse struct {
	Status    string       `json:"status"`
	Requested int          `json:"requested"`
	Accepted  int          `json:"accepted"`
	Cart      cartResponse `json:"cart"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || unitPrice.IsNegative() {
		writeError(w, http.StatusBadRequest, errors.New("unit_price must be a non-negative decimal"))
		return
	}

	device := deviceID(r)
	result, err := h.carts.AddToCart(r.Context(), device, domCart.Item{
		ProductID: req.ProductID,
		Name:      req.Name,
		Reference: req.Reference,
		UnitPrice: unitPrice,
		ImageRef:  req.ImageRef,
	}, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snapshot, err := h.carts.Get(r.Context(), device)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == domCart.AddRejectedNoStock {
		status = http.StatusConflict
	}
	writeJSON(w, status, addItemResponse{
		Status:    string(result.Status),
		Requested: result.Requested,
		Accepted:  result.Accepted,
		Cart:      toCartResponse(snapshot),
	})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type updateQuantityResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	productID := chi.URLParam(r, "productID")
	quantity, err := h.carts.UpdateQuantity(r.Context(), deviceID(r), productID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateQuantityResponse{ProductID: productID, Quantity: quantity})
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Remove(r.Context(), deviceID(r), chi.URLParam(r, "productID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), deviceID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setOwnerRequest struct {
	IdentityID string `json:"identity_id"`
}

func (h *Handler) handleSetOwner(w http.ResponseWriter, r *http.Request) {
	var req setOwnerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snapshot, err := h.carts.SetOwner(r.Context(), deviceID(r), req.IdentityID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(snapshot))
}

// --- catalog ---

type productResponse struct {
	ID          string `json:"id"`
	Reference   string `json:"reference"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	ImageRef    string `json:"image_ref,omitempty"`
	StockUnits  int    `json:"stock_units"`
	Locale      string `json:"locale"`
}

func toProductResponse(v appCatalog.View) productResponse {
	return productResponse{
		ID:          v.ID,
		Reference:   v.Reference,
		Category:    v.Category,
		Name:        v.Name,
		Description: v.Description,
		Price:       v.Price.Amount.String(),
		Currency:    v.Price.Currency.String(),
		ImageRef:    v.ImageRef,
		StockUnits:  v.StockUnits,
		Locale:      v.Locale,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	views, err := h.catalog.List(r.Context(), r.URL.Query().Get("category"), r.URL.Query().Get("locale"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toProductResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	view, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("locale"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(view))
}

// --- quotes ---

type quoteItemDTO struct {
	ProductID string `json:"product_id"`
	Reference string `json:"reference"`
	Quantity  int    `json:"quantity"`
}

type submitQuoteRequest struct {
	CompanyName string         `json:"company_name"`
	ContactName string         `json:"contact_name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Message     string         `json:"message"`
	Locale      string         `json:"locale"`
	Items       []quoteItemDTO `json:"items"`
}

type quoteResponse struct {
	ID          string         `json:"id"`
	CompanyName string         `json:"company_name"`
	Email       string         `json:"email"`
	Status      string         `json:"status"`
	Items       []quoteItemDTO `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toQuoteResponse(q *domQuote.Request) quoteResponse {
	items := make([]quoteItemDTO, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, quoteItemDTO{ProductID: it.ProductID, Reference: it.Reference, Quantity: it.Quantity})
	}
	return quoteResponse{
		ID:          q.ID,
		CompanyName: q.CompanyName,
		Email:       q.Email,
		Status:      string(q.Status),
		Items:       items,
		CreatedAt:   q.CreatedAt,
	}
}

func (h *Handler) handleSubmitQuote(w http.ResponseWriter, r *http.Request) {
	var req submitQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]domQuote.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domQuote.Item{ProductID: it.ProductID, Reference: it.Reference, Quantity: it.Quantity})
	}

	entity, err := h.quotes.Submit(r.Context(), appQuote.SubmitInput{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		Locale:      req.Locale,
		Items:       items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuoteResponse(entity))
}

func (h *Handler) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.quotes.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}
	writeJSON(w, http.StatusOK, out)
}

// --- accounts ---

type registerStandardRequest struct {
	Email string `json:"email"`
}

type accountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name,omitempty"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	DocumentURL string `json:"document_url,omitempty"`
}

func toAccountResponse(a *domAccount.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		CompanyName: a.CompanyName,
		Type:        string(a.Type),
		Status:      string(a.Status),
		DocumentURL: a.DocumentURL,
	}
}

func (h *Handler) handleRegisterStandard(w http.ResponseWriter, r *http.Request) {
	var req registerStandardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	acc, err := h.accounts.RegisterStandard(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (h *Handler) handleRegisterProfessional(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("a proof document file is required"))
		return
	}
	defer file.Close()

	acc, err := h.accounts.RegisterProfessional(r.Context(), appAccount.RegisterProfessionalInput{
		Email:        r.FormValue("email"),
		CompanyName:  r.FormValue("company_name"),
		TaxID:        r.FormValue("tax_id"),
		DocumentName: header.Filename,
		Document:     file,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

type validateAccountRequest struct {
	Approved bool `json:"approved"`
}

func (h *Handler) handleValidateAccount(w http.ResponseWriter, r *http.Request) {
	var req validateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	acc, err := h.accounts.Validate(r.Context(), chi.URLParam(r, "id"), req.Approved)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

// --- notifications ---

type notificationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, errors.New("owner query parameter is required"))
		return
	}

	entries, err := h.notifications.ListByOwner(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]notificationResponse, 0, len(entries))
	for _, n := range entries {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			Read:      n.Read,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// --- reassort ---

type createReassortRequest struct {
	AccountID string `json:"account_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Interval  string `json:"interval"`
}

type reassortResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Interval  string    `json:"interval"`
	NextRunAt time.Time `json:"next_run_at"`
	Active    bool      `json:"active"`
}

func toReassortResponse(c *domReassort.Config) reassortResponse {
	return reassortResponse{
		ID:        c.ID,
		AccountID: c.AccountID,
		ProductID: c.ProductID,
		Quantity:  c.Quantity,
		Interval:  c.Interval.String(),
		NextRunAt: c.NextRunAt,
		Active:    c.Active,
	}
}

func (h *Handler) handleCreateReassort(w http.ResponseWriter, r *http.Request) {
	var req createReassortRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	interval, err := time.ParseDuration(req.Interval)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("interval must be a duration such as \"168h\""))
		return
	}

	cfg, err := h.reassorts.Create(r.Context(), appReassort.CreateInput{
		AccountID: req.AccountID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Interval:  interval,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReassortResponse(cfg))
}

func (h *Handler) handleListReassort(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, errors.New("account query parameter is required"))
		return
	}

	configs, err := h.reassorts.ListByAccount(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]reassortResponse, 0, len(configs))
	for _, c := range configs {
		out = append(out, toReassortResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateReassortRequest struct {
	Quantity *int    `json:"quantity"`
	Interval *string `json:"interval"`
	Active   *bool   `json:"active"`
}

func (h *Handler) handleUpdateReassort(w http.ResponseWriter, r *http.Request) {
	var req updateReassortRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	input := appReassort.UpdateInput{Quantity: req.Quantity, Active: req.Active}
	if req.Interval != nil {
		interval, err := time.ParseDuration(*req.Interval)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("interval must be a duration such as \"168h\""))
			return
		}
		input.Interval = &interval
	}

	cfg, err := h.reassorts.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReassortResponse(cfg))
}

func (h *Handler) handleDeleteReassort(w http.ResponseWriter, r *http.Request) {
	if err := h.reassorts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reassortHistoryResponse struct {
	ID       string    `json:"id"`
	ConfigID string    `json:"config_id"`
	RanAt    time.Time `json:"ran_at"`
	Quantity int       `json:"quantity"`
	Outcome  string    `json:"outcome"`
}

func (h *Handler) handleReassortHistory(w http.ResponseWriter, r *http.Request) {
	configID := r.URL.Query().Get("config")
	if configID == "" {
		writeError(w, http.StatusBadRequest, errors.New("config query parameter is required"))
		return
	}

	entries, err := h.reassorts.History(r.Context(), configID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]reassortHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, reassortHistoryResponse{
			ID:       e.ID,
			ConfigID: e.ConfigID,
			RanAt:    e.RanAt,
			Quantity: e.Quantity,
			Outcome:  e.Outcome,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// --- helpers ---

func deviceID(r *http.Request) string {
	return r.Header.Get(headerSessionID)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domQuote.IsValidation(err):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domCart.ErrLineNotFound),
		errors.Is(err, domCatalog.ErrNotFound),
		errors.Is(err, domQuote.ErrNotFound),
		errors.Is(err, domAccount.ErrNotFound),
		errors.Is(err, domReassort.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, appCart.ErrMissingDevice),
		errors.Is(err, domCart.ErrMissingProductID),
		errors.Is(err, domAccount.ErrInvalidEmail),
		errors.Is(err, domAccount.ErrMissingCompany),
		errors.Is(err, domAccount.ErrMissingTaxID),
		errors.Is(err, domAccount.ErrMissingDocument),
		errors.Is(err, domAccount.ErrNotPending),
		errors.Is(err, domReassort.ErrInvalidQuantity),
		errors.Is(err, domReassort.ErrInvalidInterval),
		errors.Is(err, domReassort.ErrMissingAccount),
		errors.Is(err, domReassort.ErrMissingProduct):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
