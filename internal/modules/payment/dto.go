package payment

import "hostelcore/internal/domain"

type OpenPaymentRequest struct {
	OriginType domain.OriginType    `json:"origin_type" binding:"required" validate:"origin_type"`
	OriginID   int64                `json:"origin_id" binding:"required,gt=0"`
	Amount     *float64             `json:"amount" binding:"omitempty,gt=0"`
	Method     domain.PaymentMethod `json:"method" binding:"required" validate:"payment_method"`
	Notes      string               `json:"notes" binding:"max=500"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
