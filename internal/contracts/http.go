package contracts

type CreateDepositRequest struct {
	Amount         string `json:"amount"`
	LockPeriodDays int    `json:"lock_period_days"`
}

type WithdrawResponse struct {
	Account     string `json:"account"`
	Index       int    `json:"index"`
	Amount      string `json:"amount"`
	WithdrawnAt string `json:"withdrawn_at"`
}

type AccountSummaryResponse struct {
	Account           string   `json:"account"`
	DepositCount      int64    `json:"deposit_count"`
	LifetimeDeposited string   `json:"lifetime_deposited"`
	ActiveDeposited   string   `json:"active_deposited"`
	Roles             []string `json:"roles"`
}

type TotalLockedResponse struct {
	TotalLocked string `json:"total_locked"`
}

type ProbeResponse struct {
	WorkNeeded bool     `json:"work_needed"`
	Candidates []string `json:"candidates"`
}

type SweepRequest struct {
	Accounts []string `json:"accounts"`
}

type SweepResponse struct {
	Deactivated []string `json:"deactivated"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}
