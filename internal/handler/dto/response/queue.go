package response

import (
	"time"

	"concert-reservation/internal/domain/queue"

	"github.com/google/uuid"
)

type TokenResponse struct {
	Token     string    `json:"token"`
	AccountID uuid.UUID `json:"accountId"`
	Status    string    `json:"status"`
	Deadline  time.Time `json:"deadline"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromToken(t *queue.Token) *TokenResponse {
	return &TokenResponse{
		Token:     t.ID(),
		AccountID: t.AccountID(),
		Status:    t.Status().String(),
		Deadline:  t.Deadline(),
		CreatedAt: t.CreatedAt(),
	}
}
