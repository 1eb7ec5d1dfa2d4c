package domain

const (
	RoleEmployee = "employee"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
