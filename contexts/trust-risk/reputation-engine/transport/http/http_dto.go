package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ScoreResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID           string   `json:"user_id"`
		Score            int      `json:"score"`
		SuccessfulCycles int      `json:"successful_cycles"`
		MissedPayments   int      `json:"missed_payments"`
		TierEligibility  []string `json:"tier_eligibility"`
	} `json:"data"`
}

type ScoreListResponse struct {
	Status string          `json:"status"`
	Data   []ScoreEntryDTO `json:"data"`
}

type ScoreEntryDTO struct {
	UserID           string   `json:"user_id"`
	Score            int      `json:"score"`
	SuccessfulCycles int      `json:"successful_cycles"`
	MissedPayments   int      `json:"missed_payments"`
	TierEligibility  []string `json:"tier_eligibility"`
}

type UpdateScoreRequest struct {
	Score int `json:"score"`
}

type UpdateScoreResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID string `json:"user_id"`
		Score  int    `json:"score"`
	} `json:"data"`
}

type RecordDefaultRequest struct {
	UserID    string `json:"user_id"`
	PoolID    string `json:"pool_id"`
	Abandoned bool   `json:"abandoned"`
}

type RecordDefaultResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID            string `json:"user_id"`
		PoolID            string `json:"pool_id"`
		Severity          string `json:"severity"`
		PreviousScore     int    `json:"previous_score"`
		NewScore          int    `json:"new_score"`
		ReferrerPenalized bool   `json:"referrer_penalized"`
		MissedPayments    int    `json:"missed_payments"`
	} `json:"data"`
}

type TierCheckResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID   string `json:"user_id"`
		Tier     string `json:"tier"`
		Eligible bool   `json:"eligible"`
	} `json:"data"`
}
