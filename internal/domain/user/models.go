package user

// User is the identity document persisted in the hosted document store.
// The store generates the identifier; all other fields are set at
// creation.
type User struct {
	ID                string `json:"$id"`
	Email             string `json:"email"`
	Username          string `json:"username"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Address1          string `json:"address1"`
	City              string `json:"city"`
	State             string `json:"state"`
	PostalCode        string `json:"postalCode"`
	DateOfBirth       string `json:"dateOfBirth"`
	SSN               string `json:"ssn,omitempty"`
	Status            string `json:"status"`
	DwollaCustomerURL string `json:"dwollaCustomerUrl,omitempty"`
	PasswordHash      string `json:"-"`
}

// CreateUserParams carries the attributes for a new user document.
// PasswordHash must already be hashed; plain passwords never reach the
// repository.
type CreateUserParams struct {
	Email        string
	Username     string
	FirstName    string
	LastName     string
	Address1     string
	City         string
	State        string
	PostalCode   string
	DateOfBirth  string
	SSN          string
	PasswordHash string
}

// SignUpParams is the sign-up request payload.
type SignUpParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// UpdateUserParams carries mutable user-document fields. Only non-nil
// fields are written.
type UpdateUserParams struct {
	DwollaCustomerURL *string
}
