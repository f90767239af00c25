package response

import (
	"concert-reservation/internal/usecase/scheduler"

	"github.com/jinzhu/copier"
)

type SweepResponse struct {
	Job        string `json:"job"`
	Ran        bool   `json:"ran"`
	Result     any    `json:"result,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

func FromRunResult(r scheduler.RunResult) (*SweepResponse, error) {
	var resp SweepResponse
	if err := copier.Copy(&resp, &r); err != nil {
		return nil, err
	}
	resp.DurationMs = r.Duration.Milliseconds()
	return &resp, nil
}
