package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"account-ledger/internal/domain"
	"account-ledger/internal/ledger"
	"account-ledger/internal/store"
)

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, string) error { return nil }

func TestHTTPStatusForErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"exists", ledger.ErrAlreadyExists, http.StatusBadRequest},
		{"amount", ledger.ErrInvalidAmount, http.StatusBadRequest},
		{"funds", ledger.ErrInsufficientFunds, http.StatusBadRequest},
		{"notfound", ledger.ErrNotFound, http.StatusNotFound},
		{"identity", ledger.ErrIdentityMismatch, http.StatusConflict},
		{"wrapped notfound", errors.Join(errors.New("find account 7"), ledger.ErrNotFound), http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, http.StatusRequestTimeout},
		{"other", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := httpStatusForErr(tc.err)
			if got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := ledger.New(store.NewMemory(), noopNotifier{})
	srv := httptest.NewServer(Router(NewHandlers(engine)))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func doList(t *testing.T, url string) (*http.Response, []domain.Account) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var accts []domain.Account
	_ = json.NewDecoder(resp.Body).Decode(&accts)
	return resp, accts
}

func TestCreateAndListFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, accts := doList(t, srv.URL+"/v1/accounts")
	if resp.StatusCode != http.StatusOK || len(accts) != 0 {
		t.Fatalf("empty list: status=%d accts=%v", resp.StatusCode, accts)
	}

	body := `{"id":1,"agency":1,"digit":7,"balance":"0.00","owner_name":"Ana","owner_tax_id":"000.000.000-00"}`
	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: got %d", resp.StatusCode)
	}

	// Duplicate id maps to 400.
	resp, payload := do(t, http.MethodPost, srv.URL+"/v1/accounts", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate create: got %d", resp.StatusCode)
	}
	if payload["error"] == "" {
		t.Fatal("duplicate create: expected error body")
	}

	resp, accts = doList(t, srv.URL+"/v1/accounts")
	if resp.StatusCode != http.StatusOK || len(accts) != 1 {
		t.Fatalf("list after create: status=%d accts=%v", resp.StatusCode, accts)
	}

	resp, accts = doList(t, srv.URL+"/v1/accounts/000.000.000-00")
	if resp.StatusCode != http.StatusOK || len(accts) != 1 {
		t.Fatalf("list by owner: status=%d accts=%v", resp.StatusCode, accts)
	}

	resp, _ = doList(t, srv.URL+"/v1/accounts/999.999.999-99")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown owner: got %d", resp.StatusCode)
	}
}

func TestDepositWithdrawEndpoints(t *testing.T) {
	srv := newTestServer(t)

	create := `{"id":1,"balance":"0.00","owner_tax_id":"000.000.000-00"}`
	if resp, _ := do(t, http.MethodPost, srv.URL+"/v1/accounts", create); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create failed: %d", resp.StatusCode)
	}

	resp, payload := do(t, http.MethodPost, srv.URL+"/v1/accounts/1/deposit", `{"amount":"100.00"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deposit: got %d (%v)", resp.StatusCode, payload)
	}

	// Exact-balance withdrawal is refused.
	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts/1/withdraw", `{"amount":"100.00"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("boundary withdraw: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts/1/withdraw", `{"amount":"99.99"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("withdraw: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts/1/deposit", `{"amount":"-1.00"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative deposit: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts/99/deposit", `{"amount":"1.00"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deposit to missing account: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts/abc/deposit", `{"amount":"1.00"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: got %d", resp.StatusCode)
	}
}

func TestUpdateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	create := `{"id":1,"balance":"5.00","owner_name":"Ana","owner_tax_id":"000.000.000-00"}`
	if resp, _ := do(t, http.MethodPost, srv.URL+"/v1/accounts", create); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create failed: %d", resp.StatusCode)
	}

	// Payload id differs from path id: 409.
	resp, _ := do(t, http.MethodPut, srv.URL+"/v1/accounts/1",
		`{"id":2,"balance":"5.00","owner_name":"Bia","owner_tax_id":"000.000.000-00"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("identity mismatch: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/accounts/42",
		`{"id":42,"balance":"5.00","owner_name":"Bia","owner_tax_id":"000.000.000-00"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing target: got %d", resp.StatusCode)
	}

	resp, payload := do(t, http.MethodPut, srv.URL+"/v1/accounts/1",
		`{"id":1,"balance":"5.00","owner_name":"Bia","owner_tax_id":"000.000.000-00"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: got %d", resp.StatusCode)
	}
	if payload["owner_name"] != "Bia" {
		t.Fatalf("update body: %v", payload)
	}
}

func TestTransferEndpoint(t *testing.T) {
	srv := newTestServer(t)

	for _, create := range []string{
		`{"id":1,"balance":"1000.25","owner_tax_id":"000.000.000-00"}`,
		`{"id":2,"balance":"500.72","owner_tax_id":"111.111.111-11"}`,
	} {
		if resp, _ := do(t, http.MethodPost, srv.URL+"/v1/accounts", create); resp.StatusCode != http.StatusCreated {
			t.Fatalf("create failed: %d", resp.StatusCode)
		}
	}

	resp, payload := do(t, http.MethodPut, srv.URL+"/v1/transfers",
		`{"source_id":1,"dest_id":2,"amount":"200.00"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer: got %d (%v)", resp.StatusCode, payload)
	}
	code, ok := payload["operation_code"].(float64)
	if !ok || int64(code) < ledger.OpCodeMin || int64(code) > ledger.OpCodeMax {
		t.Fatalf("operation code out of range: %v", payload["operation_code"])
	}

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/transfers",
		`{"source_id":1,"dest_id":2,"amount":"10000.00"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("insufficient funds: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/transfers",
		`{"source_id":1,"dest_id":99,"amount":"1.00"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing destination: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/transfers",
		`{"source_id":1,"dest_id":2,"amount":"1.00"}`)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: got %d", resp.StatusCode)
	}
}

func TestInvalidJSONBodies(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/accounts", `{"id":1,"unknown_field":true}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field: got %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/accounts", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("broken json: got %d", resp.StatusCode)
	}
}
