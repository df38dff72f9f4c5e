package handler

// DepositRequest represents a deposit claim: the amount the user says they
// transferred and the external account it came from
type DepositRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Rail          string `json:"rail" binding:"required,oneof=JAZZCASH EASYPAISA"`
	HolderName    string `json:"holder_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	Reference     string `json:"reference" binding:"required"`
}

// WithdrawalRequest represents a payout request
type WithdrawalRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Rail          string `json:"rail" binding:"required,oneof=JAZZCASH EASYPAISA BANK"`
	HolderName    string `json:"holder_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	BankName      string `json:"bank_name,omitempty"`
}

// InvestmentRequest represents an investment plan purchase
type InvestmentRequest struct {
	PlanID   string `json:"plan_id" binding:"required"`
	PlanName string `json:"plan_name" binding:"required"`
	Price    int64  `json:"price" binding:"required,gt=0"`
}

// DecisionRequest represents an administrator decision on a pending transaction
type DecisionRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=APPROVE REJECT"`
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID        string `json:"id"`
	AccountNo int64  `json:"account_no"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID            string `json:"id"`
	WalletID      string `json:"wallet_id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	Rail          string `json:"rail,omitempty"`
	HolderName    string `json:"holder_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	Reference     string `json:"reference,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	PlanID        string `json:"plan_id,omitempty"`
	PlanName      string `json:"plan_name,omitempty"`
	CreatedAt     string `json:"created_at"`
	SettledAt     string `json:"settled_at,omitempty"`
}

// HistoryEntryResponse represents a projection entry in API responses
type HistoryEntryResponse struct {
	TransactionResponse
	BalanceAfter int64 `json:"balance_after"`
}

// SummaryResponse represents the wallet dashboard block
type SummaryResponse struct {
	WalletID  string `json:"wallet_id"`
	AccountNo int64  `json:"account_no"`
	Balance   int64  `json:"balance"`
	Earned    int64  `json:"earned"`
	Withdrawn int64  `json:"withdrawn"`
	Since     string `json:"since"`
}

// DashboardResponse represents the lifetime wallet totals block
type DashboardResponse struct {
	WalletID    string `json:"wallet_id"`
	Recharged   int64  `json:"recharged"`
	Income      int64  `json:"income"`
	Withdrawn   int64  `json:"withdrawn"`
	TodayIncome int64  `json:"today_income"`
}

// HoldingResponse represents one purchased plan in API responses
type HoldingResponse struct {
	PlanID     string `json:"plan_id"`
	PlanName   string `json:"plan_name"`
	Price      int64  `json:"price"`
	AcquiredAt string `json:"acquired_at"`
}

// OverviewResponse represents the platform-wide admin block
type OverviewResponse struct {
	Deposited          int64  `json:"deposited"`
	Withdrawn          int64  `json:"withdrawn"`
	Invested           int64  `json:"invested"`
	PendingDeposits    int64  `json:"pending_deposits"`
	PendingWithdrawals int64  `json:"pending_withdrawals"`
	GeneratedAt        string `json:"generated_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
