package models

// Employee represents an employee record as exposed by the public API.
// Records are owned by the upstream directory; the ID and Email are assigned there.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Salary int    `json:"salary"`
	Age    int    `json:"age"`
	Title  string `json:"title"`
	Email  string `json:"email"`
}

// CreateEmployeeRequest is the input for creating a new employee.
type CreateEmployeeRequest struct {
	Name   string `json:"name"`
	Salary int    `json:"salary"`
	Age    int    `json:"age"`
	Title  string `json:"title"`
}
