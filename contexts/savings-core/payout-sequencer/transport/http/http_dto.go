package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SlotRangeResponse struct {
	Status string `json:"status"`
	Data   struct {
		Score           int `json:"score"`
		CompletedCycles int `json:"completed_cycles"`
		Capacity        int `json:"capacity"`
		MinSlot         int `json:"min_slot"`
		MaxSlot         int `json:"max_slot"`
	} `json:"data"`
}

type ProvisionalSlotRequest struct {
	UserID   string `json:"user_id"`
	Capacity int    `json:"capacity"`
}

type ProvisionalSlotResponse struct {
	Status string `json:"status"`
	Data   struct {
		PoolID string `json:"pool_id"`
		UserID string `json:"user_id"`
		Slot   int    `json:"slot"`
	} `json:"data"`
}

type ResequenceRequest struct {
	Capacity int `json:"capacity"`
}

type SlotAssignmentDTO struct {
	UserID          string `json:"user_id"`
	Score           int    `json:"score"`
	CompletedCycles int    `json:"completed_cycles"`
	AssignedSlot    int    `json:"assigned_slot"`
}

type ResequenceResponse struct {
	Status string              `json:"status"`
	Data   []SlotAssignmentDTO `json:"data"`
}

type ExplainPositionResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID      string `json:"user_id"`
		Capacity    int    `json:"capacity"`
		Explanation string `json:"explanation"`
	} `json:"data"`
}
