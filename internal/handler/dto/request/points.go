package request

type ChargePointsRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}
