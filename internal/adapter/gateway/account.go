package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/customer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ customer.AccountGateway = (*AccountClient)(nil)

// moneyRequest is the body of check, withdraw and refill. Money is sent as a
// bare JSON number.
type moneyRequest struct {
	AccountID int64       `json:"accountId"`
	Money     json.Number `json:"money"`
}

func newMoneyRequest(accountID int64, amount decimal.Decimal) moneyRequest {
	return moneyRequest{AccountID: accountID, Money: json.Number(amount.String())}
}

type accountResponse struct {
	PhoneNumber string          `json:"phoneNumber"`
	Amount      decimal.Decimal `json:"amount"`
}

// AccountClient talks to the account service.
type AccountClient struct{ client }

func NewAccountClient(baseURL string, timeout time.Duration, log *zap.Logger) *AccountClient {
	return &AccountClient{newClient("account-gateway", baseURL, timeout, log)}
}

func (c *AccountClient) CheckEnoughMoney(ctx context.Context, accountID int64, amount decimal.Decimal) (bool, error) {
	var ok bool
	err := c.do(ctx, "check balance", http.MethodPost, "/account/check", newMoneyRequest(accountID, amount), &ok, nil)
	return ok, err
}

func (c *AccountClient) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return c.do(ctx, "withdraw", http.MethodPatch, "/account/withdraw", newMoneyRequest(accountID, amount), nil, nil)
}

func (c *AccountClient) Refill(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return c.do(ctx, "refill", http.MethodPatch, "/account/refill", newMoneyRequest(accountID, amount), nil, nil)
}

func (c *AccountClient) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var out accountResponse
	if err := c.do(ctx, "get balance", http.MethodGet, "/account/"+strconv.FormatInt(accountID, 10), nil, &out, nil); err != nil {
		return decimal.Zero, err
	}
	return out.Amount, nil
}
