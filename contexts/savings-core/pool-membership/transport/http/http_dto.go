package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type JoinPoolRequest struct {
	UserID         string `json:"user_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

type JoinPoolResponse struct {
	Status string `json:"status"`
	Data   struct {
		PoolID     string `json:"pool_id"`
		UserID     string `json:"user_id"`
		PayoutSlot int    `json:"payout_slot"`
		PoolStatus string `json:"pool_status"`
		PoolLocked bool   `json:"pool_locked"`
		Replayed   bool   `json:"replayed"`
	} `json:"data"`
}

type MissedContributionRequest struct {
	UserID    string `json:"user_id"`
	Abandoned bool   `json:"abandoned"`
}

type MissedContributionResponse struct {
	Status string `json:"status"`
	Data   struct {
		PoolID            string `json:"pool_id"`
		UserID            string `json:"user_id"`
		Severity          string `json:"severity"`
		PreviousScore     int    `json:"previous_score"`
		NewScore          int    `json:"new_score"`
		ReferrerPenalized bool   `json:"referrer_penalized"`
		MissedPayments    int    `json:"missed_payments"`
	} `json:"data"`
}

type MembershipResponse struct {
	Status string `json:"status"`
	Data   struct {
		PoolID   string    `json:"pool_id"`
		UserID   string    `json:"user_id"`
		JoinedAt time.Time `json:"joined_at"`
	} `json:"data"`
}
