package domain

// Actor is the caller identity supplied by the presentation layer, taken from
// the verified token.
type Actor struct {
	EmployeeID string
	Name       string
	Department string
	Position   string
	Role       string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsReviewer is true for reviewers and admins.
func (a Actor) IsReviewer() bool {
	return a.Role == RoleReviewer || a.Role == RoleAdmin
}

// CanReview reports whether a may review requests filed in department.
// Reviewers are limited to their own department; admins are not.
func (a Actor) CanReview(department string) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleReviewer && a.Department != "" && a.Department == department
}
