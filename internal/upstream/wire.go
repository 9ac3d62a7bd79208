package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/UnknownOlympus/iris/internal/models"
)

// Status is the processing status reported by the upstream envelope.
type Status string

const (
	StatusHandled Status = "HANDLED"
	StatusError   Status = "ERROR"
)

var statusValues = map[Status]string{
	StatusHandled: "Successfully processed request.",
	StatusError:   "Failed to process request.",
}

// MarshalJSON writes the human readable form used on the wire.
func (s Status) MarshalJSON() ([]byte, error) {
	value, ok := statusValues[s]
	if !ok {
		return nil, fmt.Errorf("unknown envelope status %q", string(s))
	}

	return json.Marshal(value)
}

// UnmarshalJSON accepts both the wire value and the bare status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("envelope status must be a string: %w", err)
	}

	for status, value := range statusValues {
		if raw == value || raw == string(status) {
			*s = status
			return nil
		}
	}

	return fmt.Errorf("unknown envelope status %q", raw)
}

// Envelope wraps every payload exchanged with the upstream directory.
type Envelope[T any] struct {
	Data    *T     `json:"data"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// EmployeeDTO is the upstream representation of an employee.
// Every field except the identifier carries the `employee_` prefix.
type EmployeeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"employee_name"`
	Salary int    `json:"employee_salary"`
	Age    int    `json:"employee_age"`
	Title  string `json:"employee_title"`
	Email  string `json:"employee_email"`
}

// ToModel converts the upstream representation into the public one.
func (d EmployeeDTO) ToModel() models.Employee {
	return models.Employee{
		ID:     d.ID,
		Name:   d.Name,
		Salary: d.Salary,
		Age:    d.Age,
		Title:  d.Title,
		Email:  d.Email,
	}
}

// EmployeeFromModel converts a public employee into the upstream representation.
func EmployeeFromModel(e models.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:     e.ID,
		Name:   e.Name,
		Salary: e.Salary,
		Age:    e.Age,
		Title:  e.Title,
		Email:  e.Email,
	}
}

// DeleteEmployeeRequest is the body of the upstream delete call.
type DeleteEmployeeRequest struct {
	Name string `json:"name"`
}
