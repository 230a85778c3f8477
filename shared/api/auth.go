package api

// Request DTOs

// Field rules live in the auth service so that format problems and taken
// fields come back in a single 422.
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response DTOs

type SignupResponse struct {
	Message string `json:"message"`
	UserId  string `json:"userId"`
}

type SigninResponse struct {
	Token  string `json:"token"`
	UserId string `json:"userId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
