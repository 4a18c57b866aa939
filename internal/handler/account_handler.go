package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"paysync/internal/service"
)

// AccountOperations is the balance core as seen by the HTTP layer.
type AccountOperations interface {
	GetBalance(ctx context.Context, userID string) (*service.BalanceResult, error)
	Deposit(ctx context.Context, req *service.AmountRequest) (*service.MovementResult, error)
	Withdraw(ctx context.Context, req *service.AmountRequest) (*service.MovementResult, error)
	Transfer(ctx context.Context, req *service.TransferRequest) (*service.TransferResult, error)
}

type AccountHandler struct {
	accounts     AccountOperations
	exposeErrors bool
}

func NewAccountHandler(accounts AccountOperations, exposeErrors bool) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		exposeErrors: exposeErrors,
	}
}

// User ids arrive as JSON numbers or numeric strings; json.Number accepts both.
type AmountRequest struct {
	UserID json.Number      `json:"userId"`
	Amount *decimal.Decimal `json:"amount"`
}

type TransferRequest struct {
	FromUserID json.Number      `json:"fromUserId"`
	ToUserID   json.Number      `json:"toUserId"`
	Amount     *decimal.Decimal `json:"amount"`
}

type BalanceOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BalanceResponse struct {
	AccountID int64        `json:"accountId"`
	Balance   string       `json:"balance"`
	User      BalanceOwner `json:"user"`
}

type MovementResponse struct {
	AccountID  int64  `json:"accountId"`
	NewBalance string `json:"newBalance"`
	UserName   string `json:"userName"`
}

type TransferLegResponse struct {
	UserID     int64  `json:"userId"`
	AccountID  int64  `json:"accountId"`
	NewBalance string `json:"newBalance"`
	UserName   string `json:"userName"`
}

type TransferResponse struct {
	Source      TransferLegResponse `json:"source"`
	Destination TransferLegResponse `json:"destination"`
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.accounts.GetBalance(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err, "An error occurred while fetching balance", h.exposeErrors)
		return
	}

	writeSuccess(w, http.StatusOK, "", BalanceResponse{
		AccountID: result.AccountID,
		Balance:   money(result.Balance),
		User: BalanceOwner{
			Name:  result.UserName,
			Email: result.UserEmail,
		},
	})
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	const fallback = "An error occurred while depositing to account"

	var req AmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	result, err := h.accounts.Deposit(r.Context(), &service.AmountRequest{
		UserID: req.UserID.String(),
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	message := fmt.Sprintf("Successfully deposited %s to account", money(result.Amount))
	writeSuccess(w, http.StatusOK, message, movementResponse(result))
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	const fallback = "An error occurred while withdrawing from account"

	var req AmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	result, err := h.accounts.Withdraw(r.Context(), &service.AmountRequest{
		UserID: req.UserID.String(),
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	message := fmt.Sprintf("Successfully withdrew %s from account", money(result.Amount))
	writeSuccess(w, http.StatusOK, message, movementResponse(result))
}

func (h *AccountHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	const fallback = "An error occurred while transferring between accounts"

	var req TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	result, err := h.accounts.Transfer(r.Context(), &service.TransferRequest{
		FromUserID: req.FromUserID.String(),
		ToUserID:   req.ToUserID.String(),
		Amount:     req.Amount,
	})
	if err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	message := fmt.Sprintf("Successfully transferred %s from %s to %s",
		money(result.Amount), result.Source.UserName, result.Destination.UserName)
	writeSuccess(w, http.StatusOK, message, TransferResponse{
		Source:      transferLegResponse(result.Source),
		Destination: transferLegResponse(result.Destination),
	})
}

func movementResponse(result *service.MovementResult) MovementResponse {
	return MovementResponse{
		AccountID:  result.AccountID,
		NewBalance: money(result.NewBalance),
		UserName:   result.UserName,
	}
}

func transferLegResponse(leg service.TransferLeg) TransferLegResponse {
	return TransferLegResponse{
		UserID:     leg.UserID,
		AccountID:  leg.AccountID,
		NewBalance: money(leg.NewBalance),
		UserName:   leg.UserName,
	}
}
