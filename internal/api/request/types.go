package request

// CreateTeamRequest is the request body for creating a team
type CreateTeamRequest struct {
	Name   string `json:"name"`
	Points *int64 `json:"points,omitempty"`
	Status string `json:"status,omitempty"`
	Color  string `json:"color,omitempty"`
}

// UpdateTeamRequest is the request body for updating a team. Omitted fields are unchanged.
type UpdateTeamRequest struct {
	Name   *string `json:"name,omitempty"`
	Points *int64  `json:"points,omitempty"`
	Status *string `json:"status,omitempty"`
	Color  *string `json:"color,omitempty"`
}

// UpdatePointsRequest is the request body for changing a team's points
type UpdatePointsRequest struct {
	Points    int64  `json:"points"`
	Operation string `json:"operation"`
}

// CreateChallengeRequest is the request body for creating a challenge
type CreateChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Points      *int64 `json:"points"`
	Status      string `json:"status,omitempty"`
}

// UpdateChallengeRequest is the request body for updating a challenge
type UpdateChallengeRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Points      *int64  `json:"points,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
