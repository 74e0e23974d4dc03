package model

// Balance is a player's bank balance
type Balance struct {
	Player string `json:"player"`
	Amount int64  `json:"amount"`
}

// TransferRequest moves money between two players
type TransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// TransferResult reports both balances after a transfer
type TransferResult struct {
	From Balance `json:"from"`
	To   Balance `json:"to"`
}

// DepositRequest credits items the host already removed from the inventory
type DepositRequest struct {
	Player   string `json:"player"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// DepositResult reports the credited amount and new balance
type DepositResult struct {
	Credited int64   `json:"credited"`
	Balance  Balance `json:"balance"`
}

// PurchaseRequest buys quantity units of a shop item
type PurchaseRequest struct {
	Player   string `json:"player"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// PurchaseResult reports what the host should hand the player
type PurchaseResult struct {
	Shop     string  `json:"shop"`
	Item     string  `json:"item"`
	GiveItem string  `json:"give_item"`
	Data     int     `json:"data,omitempty"`
	Count    int     `json:"count"`
	Charged  int64   `json:"charged"`
	Balance  Balance `json:"balance"`
}

// BuffPurchaseResult reports a guild buff purchase
type BuffPurchaseResult struct {
	Buff      string   `json:"buff"`
	Guild     string   `json:"guild"`
	Charged   int64    `json:"charged"`
	AppliedTo []string `json:"applied_to"`
	Balance   Balance  `json:"balance"`
}
