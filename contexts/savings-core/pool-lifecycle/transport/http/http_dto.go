package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AdvancePoolRequest struct {
	Target string `json:"target"`
}

type TransitionResultDTO struct {
	PoolID         string `json:"pool_id"`
	Success        bool   `json:"success"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Message        string `json:"message"`
}

type AdvancePoolResponse struct {
	Status string              `json:"status"`
	Data   TransitionResultDTO `json:"data"`
}

type AutoAdvanceResponse struct {
	Status string                `json:"status"`
	Data   []TransitionResultDTO `json:"data"`
}

type PoolStateResponse struct {
	Status string `json:"status"`
	Data   struct {
		PoolID         string  `json:"pool_id"`
		PoolStatus     string  `json:"pool_status"`
		Capacity       int     `json:"capacity"`
		CurrentMembers int     `json:"current_members"`
		CurrentCycle   int     `json:"current_cycle"`
		TotalCycles    int     `json:"total_cycles"`
		StartDate      string  `json:"start_date,omitempty"`
		JoinDeadline   string  `json:"join_deadline,omitempty"`
		Amount         float64 `json:"amount"`
		Joinable       bool    `json:"joinable"`
		Terminal       bool    `json:"terminal"`
	} `json:"data"`
}
