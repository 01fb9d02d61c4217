package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	"github.com/d1ma11/deposit-service/internal/domain/customer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ customer.Gateway = (*CustomerClient)(nil)

type customerResponse struct {
	ID          int64  `json:"id"`
	Phone       string `json:"phone"`
	BankAccount struct {
		ID                int64           `json:"id"`
		BankAccountNumber string          `json:"bankAccountNumber"`
		Amount            decimal.Decimal `json:"amount"`
	} `json:"bankAccount"`
}

// CustomerClient talks to the customer service.
type CustomerClient struct{ client }

func NewCustomerClient(baseURL string, timeout time.Duration, log *zap.Logger) *CustomerClient {
	return &CustomerClient{newClient("customer-gateway", baseURL, timeout, log)}
}

func (c *CustomerClient) FindCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	var out customerResponse
	path := "/customer/" + strconv.FormatInt(customerID, 10)
	if err := c.do(ctx, "find customer", http.MethodGet, path, nil, &out, apperr.ErrCustomerNotFound); err != nil {
		return nil, err
	}
	return &customer.Customer{
		ID:    out.ID,
		Phone: out.Phone,
		Account: customer.Account{
			ID:     out.BankAccount.ID,
			Number: out.BankAccount.BankAccountNumber,
			Amount: out.BankAccount.Amount,
		},
	}, nil
}
