package bank

// Account links a user document to an aggregator item, one of the item's
// accounts, and the durable access token for it. Created once per
// successful linking run; never updated in place.
type Account struct {
	ID               string `json:"$id"`
	UserID           string `json:"userId"`
	BankID           string `json:"bankId"` // aggregator item id
	AccountID        string `json:"accountId"`
	AccessToken      string `json:"accessToken"`
	FundingSourceURL string `json:"fundingSourceUrl"`
	ShareableID      string `json:"shareableId"`
}

// CreateAccountParams carries the fields for a new bank-account document.
type CreateAccountParams struct {
	UserID           string
	BankID           string
	AccountID        string
	AccessToken      string
	FundingSourceURL string
	ShareableID      string
}

// UpdateAccountParams carries mutable bank-account fields. Only non-nil
// fields are written.
type UpdateAccountParams struct {
	FundingSourceURL *string
}
