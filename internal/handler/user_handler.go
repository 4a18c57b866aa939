package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"paysync/internal/domain"
	"paysync/internal/service"
)

type UserOperations interface {
	CreateUser(ctx context.Context, req *service.CreateUserRequest) (*service.UserWithAccount, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
}

type UserHandler struct {
	users        UserOperations
	exposeErrors bool
}

func NewUserHandler(users UserOperations, exposeErrors bool) *UserHandler {
	return &UserHandler{
		users:        users,
		exposeErrors: exposeErrors,
	}
}

type CreateUserRequest struct {
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	PhoneNo        string           `json:"phoneno"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
}

type UserResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	PhoneNo string `json:"phoneno"`
}

type UserAccountResponse struct {
	ID      int64  `json:"id"`
	Balance string `json:"balance"`
}

type CreatedUserResponse struct {
	UserResponse
	Account UserAccountResponse `json:"account"`
}

// ListUsers serves the user search; name and phoneno filter by substring.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	users, err := h.users.ListUsers(r.Context(), domain.UserFilter{
		Name:    query.Get("name"),
		PhoneNo: query.Get("phoneno"),
	})
	if err != nil {
		writeError(w, err, "An error occurred while fetching users", h.exposeErrors)
		return
	}

	data := make([]UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, userResponse(u))
	}

	count := len(data)
	writeJSON(w, http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	const fallback = "An error occurred while creating user"

	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	created, err := h.users.CreateUser(r.Context(), &service.CreateUserRequest{
		Name:           req.Name,
		Email:          req.Email,
		PhoneNo:        req.PhoneNo,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		writeError(w, err, fallback, h.exposeErrors)
		return
	}

	writeSuccess(w, http.StatusCreated, "User created successfully with account", CreatedUserResponse{
		UserResponse: userResponse(created.User),
		Account: UserAccountResponse{
			ID:      created.Account.ID,
			Balance: money(created.Account.Balance),
		},
	})
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		PhoneNo: u.PhoneNo,
	}
}
