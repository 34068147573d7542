package user

type Role string

const (
	Coordinator Role = "coordinator"
	HOD         Role = "hod"
)

// User is the profile of the logged-in portal user as returned by the backend.
type User struct {
	Id          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Role        Role   `json:"role"`
}
