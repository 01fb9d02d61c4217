package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/d1ma11/deposit-service/internal/adapter/codestore"
	"github.com/d1ma11/deposit-service/internal/domain/confirmation"
	"github.com/d1ma11/deposit-service/internal/domain/customer"
	"github.com/d1ma11/deposit-service/internal/testutil/gatewaymock"
	"github.com/d1ma11/deposit-service/internal/testutil/memrepo"
	codes "github.com/d1ma11/deposit-service/internal/usecase/confirmation"
	ledger "github.com/d1ma11/deposit-service/internal/usecase/deposit"
	"github.com/d1ma11/deposit-service/internal/usecase/rate"
	"github.com/d1ma11/deposit-service/internal/usecase/request"
	"github.com/d1ma11/deposit-service/internal/usecase/status"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(nil)
	return e
}

func mustJSON(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
}

var alice = customer.Customer{ID: 11, Phone: "+79991112233", Account: customer.Account{ID: 501, Number: "40817810000000000501"}}

// api serves the full route table over an in-memory workflow.
type api struct {
	e       *echo.Echo
	codes   *codestore.MemoryStore
	balance decimal.Decimal
}

func newAPI(t *testing.T, balance int64) *api {
	t.Helper()
	a := &api{e: newEchoWithValidator(), codes: codestore.NewMemoryStore(), balance: decimal.NewFromInt(balance)}
	accounts := &gatewaymock.Accounts{
		CheckEnoughMoneyFn: func(_ context.Context, _ int64, amount decimal.Decimal) (bool, error) {
			return a.balance.GreaterThanOrEqual(amount), nil
		},
		WithdrawFn: func(_ context.Context, _ int64, amount decimal.Decimal) error {
			a.balance = a.balance.Sub(amount)
			return nil
		},
		RefillFn: func(_ context.Context, _ int64, amount decimal.Decimal) error {
			a.balance = a.balance.Add(amount)
			return nil
		},
		GetBalanceFn: func(context.Context, int64) (decimal.Decimal, error) { return a.balance, nil },
	}
	store := memrepo.New()
	calc := rate.NewCalculator(decimal.NewFromInt(5))
	wf := request.NewWorkflow(request.Deps{
		UoW:       store,
		Requests:  store.Requests,
		Statuses:  store.Statuses,
		Deposits:  store.Deposits,
		Customers: gatewaymock.Fixed(alice),
		Accounts:  accounts,
		Issuer:    codes.NewIssuer(a.codes, nil, time.Minute, nil),
		Tracker:   status.NewTracker(nil),
		Ledger:    ledger.NewLedger(accounts, calc, nil),
		Rates:     calc,
	})
	Register(a.e, NewHandler(), NewDepositHandler(wf))
	return a
}

func (a *api) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = mustJSON(t, body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) code(t *testing.T, kind confirmation.Kind, requestID string) string {
	t.Helper()
	c, err := a.codes.Get(context.Background(), kind, requestID)
	if err != nil {
		t.Fatalf("no %s code for %s: %v", kind, requestID, err)
	}
	return c
}

func wrongCode(c string) string {
	if c == "0000" {
		return "0001"
	}
	return "0000"
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d body=%s", status, rec.Code, rec.Body.String())
	}
	var body ErrorResponse
	decode(t, rec, &body)
	if body.Error.Code != code {
		t.Fatalf("expected error code %q, got %+v", code, body.Error)
	}
	return body
}
