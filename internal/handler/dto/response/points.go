package response

import "github.com/google/uuid"

type BalanceResponse struct {
	AccountID uuid.UUID `json:"accountId"`
	Balance   int64     `json:"balance"`
}
