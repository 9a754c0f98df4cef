package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"courier/internal/application/orchestrators"
	authDomain "courier/internal/domain/auth"
	orderDomain "courier/internal/domain/order"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// badRequest maps domain validation and transition errors to 400; the
// rest stay 500 so storage faults are not blamed on the client.
func orderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orderDomain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, orderDomain.ErrEmptyID),
		errors.Is(err, orderDomain.ErrEmptyCustomer),
		errors.Is(err, orderDomain.ErrEmptyAddress),
		errors.Is(err, orderDomain.ErrNoItems),
		errors.Is(err, orderDomain.ErrInvalidStatus),
		errors.Is(err, orderDomain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

// handleOrders handles GET (list or single), POST (create) and DELETE
// for /api/orders.
func handleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if id := r.URL.Query().Get("id"); id != "" {
			o, err := deps.OrderStore.Get(ctx, id)
			if err != nil {
				orderError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, o)
			return
		}

		orders, err := deps.OrderStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		if orders == nil {
			orders = []orderDomain.Order{}
		}
		writeJSON(w, http.StatusOK, orders)
		return
	}

	if r.Method == "POST" {
		var input struct {
			Customer string `json:"customer"`
			Address  string `json:"address"`
			Items    string `json:"items"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		o, err := orchestrators.ExecuteCreateOrder(ctx, orchestrators.CreateOrderInput{
			Customer: input.Customer,
			Address:  input.Address,
			Items:    orderDomain.ParseItems(input.Items),
		}, orchestrators.CreateOrderDeps{
			OrderStore: deps.OrderStore,
			Queue:      deps.ActionStore,
			Geocoder:   deps.Geocoder,
			Network:    deps.Network,
		})
		if err != nil {
			orderError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)
		return
	}

	if r.Method == "DELETE" {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		err := orchestrators.ExecuteDeleteOrder(ctx, id, orchestrators.DeleteOrderDeps{
			OrderStore: deps.OrderStore,
			Queue:      deps.ActionStore,
			Network:    deps.Network,
		})
		if err != nil {
			orderError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

func decodeOrderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var input struct {
		OrderID string `json:"orderId"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return "", false
	}
	if strings.TrimSpace(input.OrderID) == "" {
		http.Error(w, "orderId is required", http.StatusBadRequest)
		return "", false
	}
	return input.OrderID, true
}

// handleAcceptOrder handles POST /api/orders/accept
func handleAcceptOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := decodeOrderID(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteAcceptOrder(r.Context(), id, orchestrators.AcceptOrderDeps{
		OrderStore: deps.OrderStore,
		Queue:      deps.ActionStore,
		Network:    deps.Network,
		Observer:   deps.Observer,
	})
	if err != nil {
		orderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRejectOrder handles POST /api/orders/reject
func handleRejectOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := decodeOrderID(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteRejectOrder(r.Context(), id, orchestrators.RejectOrderDeps{
		OrderStore: deps.OrderStore,
		Queue:      deps.ActionStore,
		Network:    deps.Network,
		Observer:   deps.Observer,
	})
	if err != nil {
		orderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCompleteOrder handles POST /api/orders/complete
func handleCompleteOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := decodeOrderID(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteCompleteOrder(r.Context(), id, orchestrators.CompleteOrderDeps{
		OrderStore: deps.OrderStore,
		Queue:      deps.ActionStore,
		Network:    deps.Network,
	})
	if err != nil {
		orderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSync handles GET (status) and POST (manual pass) for /api/sync.
// The status payload is what the UI badge polls: connectivity, whether
// a pass is in flight, and how deep the queue is.
func handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		pending, err := deps.ActionStore.Count(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"online":  deps.Network.Online(),
			"syncing": deps.Engine.Syncing(),
			"pending": pending,
		})
		return
	}

	if r.Method == "POST" {
		if !deps.Network.Online() {
			http.Error(w, "offline", http.StatusConflict)
			return
		}
		deps.Engine.SyncPending(r.Context())
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogin handles POST /api/auth/login. Online logins mint a fresh
// token; offline logins re-check credentials against the stored
// snapshot so the courier can get back in with no connectivity.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	loginInput := orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
	}
	loginDeps := orchestrators.LoginDeps{AuthStore: deps.AuthStore}

	var snap authDomain.Snapshot
	var err error
	if deps.Network.Online() {
		snap, err = orchestrators.ExecuteLogin(r.Context(), loginInput, loginDeps)
	} else {
		snap, err = orchestrators.ExecuteOfflineLogin(r.Context(), loginInput, loginDeps)
	}
	if err != nil {
		authError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(snap))
}

// handleSession handles GET (restore) and DELETE (logout) for
// /api/auth/session.
func handleSession(w http.ResponseWriter, r *http.Request) {
	loginDeps := orchestrators.LoginDeps{AuthStore: deps.AuthStore}

	if r.Method == "GET" {
		snap, err := orchestrators.ExecuteRestoreSession(r.Context(), loginDeps)
		if err != nil {
			authError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse(snap))
		return
	}

	if r.Method == "DELETE" {
		if err := orchestrators.ExecuteLogout(r.Context(), loginDeps); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// sessionResponse strips the password hash from the snapshot before it
// leaves the process.
func sessionResponse(snap authDomain.Snapshot) map[string]any {
	return map[string]any{
		"email": snap.Email,
		"name":  snap.Name,
		"token": snap.Token,
	}
}

func authError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authDomain.ErrNoSession), errors.Is(err, authDomain.ErrWrongPassword):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, authDomain.ErrEmptyEmail),
		errors.Is(err, authDomain.ErrInvalidEmail),
		errors.Is(err, authDomain.ErrEmptyPassword),
		errors.Is(err, authDomain.ErrPasswordTooShort):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

// handleHealth handles GET /api/health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"online": strconv.FormatBool(deps.Network.Online()),
	})
}
