package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/security"
	"rental-engine-backend/internal/service"
	"rental-engine-backend/internal/utils"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Services bundles everything the REST handlers call into.
type Services struct {
	Orders        service.OrderService
	Pickups       service.PickupService
	Returns       service.ReturnService
	Invoices      service.InvoiceService
	Lifecycle     service.LifecycleService
	Notifications service.NotificationService
	Ledger        *service.InventoryLedger
}

type Handler struct {
	svc *Services
}

func NewHandler(svc *Services) *Handler {
	return &Handler{svc: svc}
}

// NewRouter registers every REST route behind logging and auth middleware.
func NewRouter(h *Handler, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, AuthMiddleware(tm))

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/products/{id}/availability", h.ProductAvailability).Methods(http.MethodGet)
	api.HandleFunc("/quotations/{id}/availability", h.QuotationAvailability).Methods(http.MethodGet)
	api.HandleFunc("/quotations/{id}/confirm", h.ConfirmQuotation).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/invoice", h.GetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/pickup/ready", h.MarkPickupReady).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/pickup/complete", h.CompletePickup).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/return", h.ProcessReturn).Methods(http.MethodPost)
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost)
	api.HandleFunc("/jobs/lifecycle-sweep", h.RunLifecycleSweep).Methods(http.MethodPost)

	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return int32(id), nil
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func (h *Handler) ProductAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := utils.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("from", err.Error()))
		return
	}
	to, err := utils.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("to", err.Error()))
		return
	}
	available, err := h.svc.Ledger.AvailableQuantity(r.Context(), id, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": id,
		"from":       utils.FormatDate(from),
		"to":         utils.FormatDate(to),
		"available":  available,
	})
}

func (h *Handler) QuotationAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.svc.Orders.CheckAvailability(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type confirmRequest struct {
	AddressID        *int32 `json:"address_id"`
	PaymentReference string `json:"payment_reference"`
}

func (h *Handler) ConfirmQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req confirmRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.Orders.ConfirmQuotation(r.Context(), service.ConfirmRequest{
		QuotationID:      id,
		AddressID:        req.AddressID,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.AlreadyConfirmed {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	details, err := h.svc.Orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := h.svc.Invoices.GetOrCreateInvoice(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) MarkPickupReady(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Pickups.MarkReady(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) CompletePickup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Pickups.CompletePickup(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type returnRequest struct {
	Items      []service.ReturnItemInput `json:"items"`
	DamageFee  *decimal.Decimal          `json:"damage_fee"`
	ReturnDate string                    `json:"return_date"`
	Notes      string                    `json:"notes"`
}

func (h *Handler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req returnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.ReturnRequest{
		OrderID:   id,
		Items:     req.Items,
		DamageFee: req.DamageFee,
		Notes:     req.Notes,
	}
	if req.ReturnDate != "" {
		d, err := utils.ParseDate(req.ReturnDate)
		if err != nil {
			writeError(w, r, domain.NewValidationError("return_date", err.Error()))
			return
		}
		in.ReturnDate = &d
	}
	if userID, err := GetUserIDFromContext(r.Context()); err == nil {
		in.ProcessedBy = &userID
	}

	ret, err := h.svc.Returns.ProcessReturn(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ret)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return
	}
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	notes, total, err := h.svc.Notifications.GetNotifications(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notes,
		"total":         total,
		"page":          page,
	})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Notifications.MarkAsRead(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunLifecycleSweep runs the sweep now, or for ?date=yyyy-mm-dd when replaying a missed day.
func (h *Handler) RunLifecycleSweep(w http.ResponseWriter, r *http.Request) {
	var (
		summary *domain.SweepSummary
		err     error
	)
	if ds := r.URL.Query().Get("date"); ds != "" {
		var day time.Time
		if day, err = utils.ParseDate(ds); err != nil {
			writeError(w, r, domain.NewValidationError("date", err.Error()))
			return
		}
		summary, err = h.svc.Lifecycle.RunSweepAt(r.Context(), day)
	} else {
		summary, err = h.svc.Lifecycle.RunSweep(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func queryInt32(r *http.Request, name string, def int32) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return def
	}
	return int32(v)
}
