package http

import (
	"net/http"
	"strconv"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	"github.com/d1ma11/deposit-service/internal/domain/deposit"
	"github.com/d1ma11/deposit-service/internal/usecase/request"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type DepositHandler struct{ wf *request.Workflow }

func NewDepositHandler(wf *request.Workflow) *DepositHandler { return &DepositHandler{wf: wf} }

type termsReq struct {
	DepositType deposit.Type       `json:"deposit_type" validate:"required,oneof=DEPOSITS_AND_WITHDRAWALS DEPOSITS_AND_NO_WITHDRAWALS NO_DEPOSITS_AND_WITHDRAWALS"`
	Duration    deposit.Duration   `json:"duration" validate:"required,oneof=MONTH_3 MONTH_6 YEAR"`
	Capitalized bool               `json:"is_capitalized"`
	PayoutType  deposit.PayoutType `json:"percent_payment_type" validate:"omitempty,oneof=MONTHLY END_OF_TERM"`
}

func (t termsReq) terms(amount decimal.Decimal) deposit.Terms {
	return deposit.Terms{
		Type:        t.DepositType,
		Duration:    t.Duration,
		Amount:      amount,
		Capitalized: t.Capitalized,
		PayoutType:  t.PayoutType,
	}
}

type checkReq struct {
	termsReq
	Amount decimal.Decimal `json:"amount" validate:"dgt=0,dec2"`
}

type openReq struct {
	checkReq
	CustomerID int64 `json:"customer_id" validate:"gt=0"`
}

// The amount of an open request is fixed at creation, so confirm only restates the terms.
type confirmOpenReq struct {
	termsReq
	RequestID string `json:"request_id" validate:"required,hex32"`
	Code      string `json:"code" validate:"required,len=4,numeric"`
}

type requestRef struct {
	RequestID string `json:"request_id" validate:"required,hex32"`
}

type confirmRefillReq struct {
	RequestID string          `json:"request_id" validate:"required,hex32"`
	Amount    decimal.Decimal `json:"amount" validate:"dgt=0,dec2"`
	Code      string          `json:"code" validate:"required,len=4,numeric"`
}

type confirmCloseReq struct {
	RequestID string `json:"request_id" validate:"required,hex32"`
	Code      string `json:"code" validate:"required,len=4,numeric"`
}

type rateResp struct {
	Rate decimal.Decimal `json:"rate"`
}

type codeIssuedResp struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

// confirmResp tags a confirmation result with its outcome.
type confirmResp struct {
	Status request.Outcome  `json:"status"`
	Result request.Response `json:"result"`
}

func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.ErrValidation.Withf("invalid body")
	}
	if err := c.Validate(dst); err != nil {
		return &validationError{details: ToFieldErrors(err)}
	}
	return nil
}

func (h *DepositHandler) Check(c echo.Context) error {
	var req checkReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	r, err := h.wf.CheckTerms(req.terms(req.Amount))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rateResp{Rate: r})
}

func (h *DepositHandler) Open(c echo.Context) error {
	var req openReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.wf.OpenRequest(c.Request().Context(), request.OpenInput{
		CustomerID: req.CustomerID,
		Terms:      req.terms(req.Amount),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DepositHandler) ConfirmOpen(c echo.Context) error {
	var req confirmOpenReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.wf.ConfirmOpenRequest(c.Request().Context(), request.ConfirmOpenInput{
		RequestID: req.RequestID,
		Code:      req.Code,
		Terms:     req.terms(decimal.Zero),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, confirmResp{Status: res.Outcome(), Result: res})
}

func (h *DepositHandler) Refill(c echo.Context) error {
	var req requestRef
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.wf.RefillRequest(c.Request().Context(), req.RequestID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, codeIssuedResp{RequestID: req.RequestID, Message: "refill confirmation code issued"})
}

func (h *DepositHandler) ConfirmRefill(c echo.Context) error {
	var req confirmRefillReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.wf.ConfirmRefillDeposit(c.Request().Context(), request.RefillInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, confirmResp{Status: res.Outcome(), Result: res})
}

func (h *DepositHandler) Close(c echo.Context) error {
	var req requestRef
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.wf.CloseRequest(c.Request().Context(), req.RequestID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, codeIssuedResp{RequestID: req.RequestID, Message: "close confirmation code issued"})
}

func (h *DepositHandler) ConfirmClose(c echo.Context) error {
	var req confirmCloseReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.wf.ConfirmCloseDeposit(c.Request().Context(), request.CloseInput(req)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DepositHandler) Summary(c echo.Context) error {
	customerID, err := strconv.ParseInt(c.Param("customer_id"), 10, 64)
	if err != nil || customerID <= 0 {
		return apperr.ErrValidation.Withf("customer_id must be a positive integer")
	}
	s, err := h.wf.Summary(c.Request().Context(), customerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *DepositHandler) History(c echo.Context) error {
	var req requestRef
	req.RequestID = c.Param("request_id")
	if err := c.Validate(&req); err != nil {
		return &validationError{details: ToFieldErrors(err)}
	}
	hist, err := h.wf.History(c.Request().Context(), req.RequestID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hist)
}
