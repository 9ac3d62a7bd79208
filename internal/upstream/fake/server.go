// Package fake implements the upstream employee directory contract in memory.
// It backs the development upstream binary and end-to-end tests.
package fake

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"slices"
	"sync"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/upstream"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tamathecxder/randomail"
)

// BasePath is the path of the employee collection served by the fake directory.
const BasePath = "/api/v1/employee"

var (
	firstNames = []string{"Mary", "Peter", "Gwen", "Miles", "Harry", "May", "Ben", "Felicia", "Eddie", "Norman"}
	lastNames  = []string{"Jane", "Parker", "Stacy", "Morales", "Osborn", "Watson", "Brock", "Hardy", "Reilly", "Drew"}
	titles     = []string{"developer", "analyst", "engineer", "manager", "architect", "designer"}
)

// Directory is an in-memory employee directory speaking the upstream wire format.
type Directory struct {
	log       *slog.Logger
	mu        sync.RWMutex
	employees []models.Employee
}

// NewDirectory creates a directory holding the given employees in order.
func NewDirectory(log *slog.Logger, employees ...models.Employee) *Directory {
	stored := make([]models.Employee, len(employees))
	copy(stored, employees)

	return &Directory{
		log:       log,
		mu:        sync.RWMutex{},
		employees: stored,
	}
}

// Seed appends count generated employees to the directory.
func (d *Directory) Seed(count int) {
	const (
		minSalary  = 30000
		salarySpan = 470000
		minAge     = 18
		ageSpan    = 50
	)

	for range count {
		name := firstNames[rand.IntN(len(firstNames))] + " " + lastNames[rand.IntN(len(lastNames))]
		d.add(models.CreateEmployeeRequest{
			Name:   name,
			Salary: minSalary + rand.IntN(salarySpan),
			Age:    minAge + rand.IntN(ageSpan),
			Title:  titles[rand.IntN(len(titles))],
		})
	}

	d.log.Info("Seeded mock directory", "count", count)
}

// Employees returns a copy of the stored employees.
func (d *Directory) Employees() []models.Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.Employee, len(d.employees))
	copy(out, d.employees)

	return out
}

// Handler returns the http.Handler serving the upstream contract under BasePath.
func (d *Directory) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc(BasePath, d.list).Methods(http.MethodGet)
	router.HandleFunc(BasePath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodHead)
	router.HandleFunc(BasePath, d.create).Methods(http.MethodPost)
	router.HandleFunc(BasePath, d.deleteByName).Methods(http.MethodDelete)
	router.HandleFunc(BasePath+"/{id}", d.get).Methods(http.MethodGet)

	return router
}

func (d *Directory) list(w http.ResponseWriter, _ *http.Request) {
	d.mu.RLock()
	dtos := make([]upstream.EmployeeDTO, 0, len(d.employees))
	for _, employee := range d.employees {
		dtos = append(dtos, upstream.EmployeeFromModel(employee))
	}
	d.mu.RUnlock()

	writeEnvelope(w, http.StatusOK, &dtos, upstream.StatusHandled, "")
}

func (d *Directory) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeEnvelope[upstream.EmployeeDTO](w, http.StatusBadRequest, nil, upstream.StatusError, "Invalid employee id")
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, employee := range d.employees {
		if employee.ID == id.String() {
			dto := upstream.EmployeeFromModel(employee)
			writeEnvelope(w, http.StatusOK, &dto, upstream.StatusHandled, "")
			return
		}
	}

	writeEnvelope[upstream.EmployeeDTO](w, http.StatusNotFound, nil, upstream.StatusError,
		fmt.Sprintf("Employee %s not found", id))
}

func (d *Directory) create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeEnvelope[upstream.EmployeeDTO](w, http.StatusBadRequest, nil, upstream.StatusError, "Invalid request body")
		return
	}

	if input.Name == "" || input.Salary < 0 || input.Age <= 0 || input.Title == "" {
		writeEnvelope[upstream.EmployeeDTO](w, http.StatusBadRequest, nil, upstream.StatusError,
			"name and title must not be blank, salary must be non-negative and age positive")
		return
	}

	dto := upstream.EmployeeFromModel(d.add(input))
	writeEnvelope(w, http.StatusOK, &dto, upstream.StatusHandled, "")
}

func (d *Directory) deleteByName(w http.ResponseWriter, r *http.Request) {
	var input upstream.DeleteEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Name == "" {
		writeEnvelope[bool](w, http.StatusBadRequest, nil, upstream.StatusError, "Invalid request body")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	deleted := false
	for i, employee := range d.employees {
		if employee.Name == input.Name {
			d.employees = slices.Delete(d.employees, i, i+1)
			deleted = true
			break
		}
	}

	writeEnvelope(w, http.StatusOK, &deleted, upstream.StatusHandled, "")
}

func (d *Directory) add(input models.CreateEmployeeRequest) models.Employee {
	employee := models.Employee{
		ID:     uuid.NewString(),
		Name:   input.Name,
		Salary: input.Salary,
		Age:    input.Age,
		Title:  input.Title,
		Email:  randomail.GenerateRandomEmail(),
	}

	d.mu.Lock()
	d.employees = append(d.employees, employee)
	d.mu.Unlock()

	return employee
}

func writeEnvelope[T any](w http.ResponseWriter, statusCode int, data *T, status upstream.Status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(upstream.Envelope[T]{
		Data:    data,
		Status:  status,
		Message: message,
	})
}
