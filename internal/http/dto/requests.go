package dto

type RegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CancelBookingRequest struct {
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelled_by"` // guest / host
}
