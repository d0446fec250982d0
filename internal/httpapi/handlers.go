package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"account-ledger/internal/domain"
	"account-ledger/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	engine *ledger.Engine
}

func NewHandlers(e *ledger.Engine) *Handlers { return &Handlers{engine: e} }

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func httpStatusForErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Engine-level business errors
	case errors.Is(err, ledger.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrIdentityMismatch):
		return http.StatusConflict

	// Context / timeouts
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout

	default:
		return http.StatusInternalServerError
	}
}

func publicErrMessage(code int, err error) string {
	// Don't leak internals on 5xx.
	if code >= 500 {
		return "internal error"
	}
	return err.Error()
}

func writeEngineErr(w http.ResponseWriter, err error) {
	code := httpStatusForErr(err)
	writeErr(w, code, publicErrMessage(code, err))
}

// requestCtx bounds the engine call and echoes the request's
// X-Correlation-Id on the response, minting one when absent.
func requestCtx(w http.ResponseWriter, r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	corr := r.Header.Get("X-Correlation-Id")
	if corr == "" {
		corr = uuid.New().String()
	}
	w.Header().Set("X-Correlation-Id", corr)
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return ctx, cancel
}

// Accounts handles the collection: POST creates, GET lists everything.
func (h *Handlers) Accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createAccount(w, r)
	case http.MethodGet:
		h.listAccounts(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handlers) createAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.Account
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(w, r, 3*time.Second)
	defer cancel()

	acct, err := h.engine.Create(ctx, req)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *Handlers) listAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(w, r, 3*time.Second)
	defer cancel()

	accts, err := h.engine.ListAll(ctx)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accts)
}

// AccountsSubtree routes everything under /v1/accounts/:
//
//	GET  /v1/accounts/{taxID}           list a customer's accounts
//	PUT  /v1/accounts/{id}              replace an account record
//	POST /v1/accounts/{id}/deposit      deposit into an account
//	POST /v1/accounts/{id}/withdraw     withdraw from an account
func (h *Handlers) AccountsSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/accounts/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.listByOwner(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.updateAccount(w, r, parts[0])
	case len(parts) == 2 && r.Method == http.MethodPost && parts[1] == "deposit":
		h.move(w, r, parts[0], h.engine.Deposit)
	case len(parts) == 2 && r.Method == http.MethodPost && parts[1] == "withdraw":
		h.move(w, r, parts[0], h.engine.Withdraw)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handlers) listByOwner(w http.ResponseWriter, r *http.Request, taxID string) {
	ctx, cancel := requestCtx(w, r, 3*time.Second)
	defer cancel()

	accts, err := h.engine.ListByOwnerTaxID(ctx, taxID)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accts)
}

func (h *Handlers) updateAccount(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req domain.Account
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(w, r, 3*time.Second)
	defer cancel()

	acct, err := h.engine.Update(ctx, id, req)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

type moveFunc = func(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error)

func (h *Handlers) move(w http.ResponseWriter, r *http.Request, rawID string, op moveFunc) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req domain.AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(w, r, 3*time.Second)
	defer cancel()

	amount, err := op(ctx, id, req.Amount)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AmountResponse{AccountID: id, Amount: amount})
}

// Transfer handles PUT /v1/transfers.
func (h *Handlers) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req domain.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(w, r, 5*time.Second)
	defer cancel()

	code, err := h.engine.Transfer(ctx, req.SourceID, req.DestID, req.Amount)
	if err != nil {
		writeEngineErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.TransferResponse{
		OperationCode: code,
		Message: fmt.Sprintf("operation %d: transferred %s from account %d to account %d",
			code, req.Amount.StringFixed(2), req.SourceID, req.DestID),
	})
}
