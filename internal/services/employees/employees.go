package employees

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/UnknownOlympus/iris/internal/apperr"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
)

// TopEarnersLimit is the number of names returned by TopTenByEarning.
const TopEarnersLimit = 10

// EmployeeClient represents the upstream employee directory.
type EmployeeClient interface {
	FetchAll(ctx context.Context) ([]models.Employee, error)
	FetchByID(ctx context.Context, id string) (models.Employee, error)
	Create(ctx context.Context, input models.CreateEmployeeRequest) (models.Employee, error)
	DeleteByName(ctx context.Context, name string) error
}

// Directory answers employee queries by fetching fresh data from the upstream on every call.
type Directory struct {
	log     *slog.Logger
	client  EmployeeClient
	metrics *metrics.Metrics
}

func NewDirectory(log *slog.Logger, client EmployeeClient, metrics *metrics.Metrics) *Directory {
	return &Directory{log: log, client: client, metrics: metrics}
}

func (d *Directory) initLogger(opn string) *slog.Logger {
	return d.log.With(
		slog.String("op", opn),
		slog.String("division", "employee"),
	)
}

// ListAll returns every employee in upstream order.
func (d *Directory) ListAll(ctx context.Context) ([]models.Employee, error) {
	const opn = "Directory.ListAll"
	log := d.initLogger(opn)

	employees, err := d.client.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	log.DebugContext(ctx, "Listed employees", "count", len(employees))

	return employees, nil
}

// SearchByName returns the employees whose name contains fragment, ignoring case.
func (d *Directory) SearchByName(ctx context.Context, fragment string) ([]models.Employee, error) {
	const opn = "Directory.SearchByName"
	log := d.initLogger(opn)

	employees, err := d.client.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search employees: %w", err)
	}

	matches := FilterByName(employees, fragment)
	if len(matches) == 0 {
		log.InfoContext(ctx, "No matching employees", "search", fragment)
		d.metrics.DerivedViewsEmpty.WithLabelValues("search").Inc()
		return nil, fmt.Errorf("%w: no employees match %q", apperr.ErrNotFound, fragment)
	}

	log.InfoContext(ctx, "Found matching employees", "search", fragment, "count", len(matches))

	return matches, nil
}

// GetByID returns a single employee.
func (d *Directory) GetByID(ctx context.Context, id string) (models.Employee, error) {
	employee, err := d.client.FetchByID(ctx, id)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return employee, nil
}

// HighestSalary returns the highest salary among all employees.
func (d *Directory) HighestSalary(ctx context.Context) (int, error) {
	const opn = "Directory.HighestSalary"
	log := d.initLogger(opn)

	employees, err := d.client.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get highest salary: %w", err)
	}

	salary, ok := MaxSalary(employees)
	if !ok {
		d.metrics.DerivedViewsEmpty.WithLabelValues("highest_salary").Inc()
		return 0, fmt.Errorf("%w: no employees", apperr.ErrNotFound)
	}

	log.InfoContext(ctx, "Highest salary found", "salary", salary)

	return salary, nil
}

// TopTenByEarning returns the names of the ten highest earners, highest first.
func (d *Directory) TopTenByEarning(ctx context.Context) ([]string, error) {
	const opn = "Directory.TopTenByEarning"
	log := d.initLogger(opn)

	employees, err := d.client.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get top earners: %w", err)
	}

	names := TopEarners(employees, TopEarnersLimit)
	if len(names) == 0 {
		d.metrics.DerivedViewsEmpty.WithLabelValues("top_earners").Inc()
		return nil, fmt.Errorf("%w: no employees", apperr.ErrNotFound)
	}

	log.InfoContext(ctx, "Top highest earning employees fetched successfully", "count", len(names))

	return names, nil
}

// Create creates a new employee upstream.
func (d *Directory) Create(ctx context.Context, input models.CreateEmployeeRequest) (models.Employee, error) {
	const opn = "Directory.Create"
	log := d.initLogger(opn)

	employee, err := d.client.Create(ctx, input)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to create employee '%s': %w", input.Name, err)
	}

	log.InfoContext(ctx, "Employee created", "id", employee.ID, "name", employee.Name)

	return employee, nil
}

// DeleteByID resolves the employee by identifier and deletes it by name.
// It returns a confirmation message.
func (d *Directory) DeleteByID(ctx context.Context, id string) (string, error) {
	const opn = "Directory.DeleteByID"
	log := d.initLogger(opn)

	employee, err := d.client.FetchByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to resolve employee: %w", err)
	}

	if err = d.client.DeleteByName(ctx, employee.Name); err != nil {
		return "", fmt.Errorf("failed to delete employee '%s': %w", employee.Name, err)
	}

	log.InfoContext(ctx, "Employee deleted successfully", "id", employee.ID, "name", employee.Name)

	return fmt.Sprintf("Employee %s deleted successfully.", employee.Name), nil
}

// FilterByName keeps the employees whose name contains fragment, ignoring case, in their original order.
func FilterByName(employees []models.Employee, fragment string) []models.Employee {
	needle := strings.ToLower(fragment)
	matches := make([]models.Employee, 0, len(employees))

	for _, employee := range employees {
		if strings.Contains(strings.ToLower(employee.Name), needle) {
			matches = append(matches, employee)
		}
	}

	return matches
}

// MaxSalary returns the highest salary and false when there are no employees.
func MaxSalary(employees []models.Employee) (int, bool) {
	if len(employees) == 0 {
		return 0, false
	}

	return slices.MaxFunc(employees, func(a, b models.Employee) int {
		return cmp.Compare(a.Salary, b.Salary)
	}).Salary, true
}

// TopEarners returns up to limit names sorted by salary descending.
// Employees with equal salaries keep their relative order.
func TopEarners(employees []models.Employee, limit int) []string {
	sorted := slices.Clone(employees)
	slices.SortStableFunc(sorted, func(a, b models.Employee) int {
		return cmp.Compare(b.Salary, a.Salary)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	names := make([]string, 0, len(sorted))
	for _, employee := range sorted {
		names = append(names, employee.Name)
	}

	return names
}
