package employees_test

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/UnknownOlympus/iris/internal/apperr"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/services/employees"
	mocks "github.com/UnknownOlympus/iris/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const maryID = "4a06ee5d-b7ba-4853-ac0c-abac53243b51"

var (
	mary = models.Employee{ID: maryID, Name: "Mary Jane", Salary: 234566, Age: 20, Title: "developer",
		Email: "maryjane@company.com"}
	peter = models.Employee{ID: "5067d73e-ad81-499f-93d0-bfee268e5bc7", Name: "Peter Parker", Salary: 458866,
		Age: 20, Title: "developer", Email: "peterparker@company.com"}
)

func newDirectory(t *testing.T) (*employees.Directory, *mocks.EmployeeClient) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockClient := mocks.NewEmployeeClient(t)
	testMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	return employees.NewDirectory(logger, mockClient, testMetrics), mockClient
}

func TestListAll(t *testing.T) {
	t.Parallel()

	t.Run("returns upstream order", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return([]models.Employee{mary, peter}, nil).Once()

		result, err := directory.ListAll(t.Context())

		require.NoError(t, err)
		assert.Equal(t, []models.Employee{mary, peter}, result)
	})

	t.Run("propagates upstream failure", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		upstreamErr := apperr.NewExternalServiceError(http.StatusTooManyRequests, "slow down")
		mockClient.On("FetchAll", mock.Anything).Return(nil, upstreamErr).Once()

		_, err := directory.ListAll(t.Context())

		var extErr *apperr.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, http.StatusTooManyRequests, extErr.StatusCode)
	})
}

func TestSearchByName(t *testing.T) {
	t.Parallel()

	t.Run("case insensitive match", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return([]models.Employee{mary, peter}, nil).Once()

		result, err := directory.SearchByName(t.Context(), "mary")

		require.NoError(t, err)
		assert.Equal(t, []models.Employee{mary}, result)
	})

	t.Run("no match is not found", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return([]models.Employee{mary, peter}, nil).Once()

		_, err := directory.SearchByName(t.Context(), "gwen")

		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("upstream failure", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return(nil, assert.AnError).Once()

		_, err := directory.SearchByName(t.Context(), "mary")

		require.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchByID", mock.Anything, maryID).Return(mary, nil).Once()

		result, err := directory.GetByID(t.Context(), maryID)

		require.NoError(t, err)
		assert.Equal(t, mary, result)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchByID", mock.Anything, maryID).
			Return(models.Employee{}, fmt.Errorf("%w: employee %s", apperr.ErrNotFound, maryID)).Once()

		_, err := directory.GetByID(t.Context(), maryID)

		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchByID", mock.Anything, "abc").
			Return(models.Employee{}, fmt.Errorf("%w: invalid UUID format: abc", apperr.ErrBadRequest)).Once()

		_, err := directory.GetByID(t.Context(), "abc")

		require.ErrorIs(t, err, apperr.ErrBadRequest)
	})
}

func TestHighestSalary(t *testing.T) {
	t.Parallel()

	t.Run("maximum of all salaries", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return([]models.Employee{mary, peter}, nil).Once()

		salary, err := directory.HighestSalary(t.Context())

		require.NoError(t, err)
		assert.Equal(t, 458866, salary)
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return([]models.Employee{}, nil).Once()

		_, err := directory.HighestSalary(t.Context())

		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestTopTenByEarning(t *testing.T) {
	t.Parallel()

	t.Run("salary descending", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return([]models.Employee{mary, peter}, nil).Once()

		names, err := directory.TopTenByEarning(t.Context())

		require.NoError(t, err)
		assert.Equal(t, []string{"Peter Parker", "Mary Jane"}, names)
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchAll", mock.Anything).Return([]models.Employee{}, nil).Once()

		_, err := directory.TopTenByEarning(t.Context())

		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCreate(t *testing.T) {
	t.Parallel()

	input := models.CreateEmployeeRequest{Name: "Mary Jane", Salary: 234566, Age: 20, Title: "developer"}

	t.Run("returns created record", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("Create", mock.Anything, input).Return(mary, nil).Once()

		created, err := directory.Create(t.Context(), input)

		require.NoError(t, err)
		assert.Equal(t, mary, created)
	})

	t.Run("upstream failure", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("Create", mock.Anything, input).
			Return(models.Employee{}, apperr.NewExternalServiceError(http.StatusBadRequest, "invalid")).Once()

		_, err := directory.Create(t.Context(), input)

		var extErr *apperr.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.Contains(t, err.Error(), "failed to create employee 'Mary Jane'")
	})
}

func TestDeleteByID(t *testing.T) {
	t.Parallel()

	t.Run("resolves name and deletes", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchByID", mock.Anything, maryID).Return(mary, nil).Once()
		mockClient.On("DeleteByName", mock.Anything, "Mary Jane").Return(nil).Once()

		message, err := directory.DeleteByID(t.Context(), maryID)

		require.NoError(t, err)
		assert.Equal(t, "Employee Mary Jane deleted successfully.", message)
	})

	t.Run("nonexistent id is not found", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchByID", mock.Anything, maryID).
			Return(models.Employee{}, fmt.Errorf("%w: employee %s", apperr.ErrNotFound, maryID)).Once()

		_, err := directory.DeleteByID(t.Context(), maryID)

		require.ErrorIs(t, err, apperr.ErrNotFound)
		var extErr *apperr.ExternalServiceError
		assert.False(t, errors.As(err, &extErr))
		mockClient.AssertNotCalled(t, "DeleteByName", mock.Anything, mock.Anything)
	})

	t.Run("upstream deletion failure", func(t *testing.T) {
		t.Parallel()

		directory, mockClient := newDirectory(t)
		mockClient.On("FetchByID", mock.Anything, maryID).Return(mary, nil).Once()
		mockClient.On("DeleteByName", mock.Anything, "Mary Jane").
			Return(apperr.NewExternalServiceError(http.StatusInternalServerError, "Failed to delete employee.")).Once()

		_, err := directory.DeleteByID(t.Context(), maryID)

		var extErr *apperr.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, "Failed to delete employee.", extErr.Message)
	})
}

func TestFilterByName(t *testing.T) {
	t.Parallel()

	staff := []models.Employee{mary, peter, {Name: "Mary Parker"}}

	for _, employee := range staff {
		for _, fragment := range []string{employee.Name, employee.Name[:3], employee.Name[len(employee.Name)-3:]} {
			for _, variant := range []string{fragment, strings.ToUpper(fragment), strings.ToLower(fragment)} {
				matches := employees.FilterByName(staff, variant)
				assert.Contains(t, matches, employee, "fragment %q must match %q", variant, employee.Name)
			}
		}
	}

	assert.Equal(t, []models.Employee{peter, {Name: "Mary Parker"}}, employees.FilterByName(staff, "PARK"))
	assert.Empty(t, employees.FilterByName(staff, "gwen"))
	assert.Equal(t, staff, employees.FilterByName(staff, ""))
}

func TestMaxSalary(t *testing.T) {
	t.Parallel()

	_, ok := employees.MaxSalary(nil)
	assert.False(t, ok)

	staff := generateStaff(37)
	salary, ok := employees.MaxSalary(staff)
	require.True(t, ok)
	for _, employee := range staff {
		assert.GreaterOrEqual(t, salary, employee.Salary)
	}
	assert.True(t, slices.ContainsFunc(staff, func(e models.Employee) bool { return e.Salary == salary }))
}

func TestTopEarners(t *testing.T) {
	t.Parallel()

	t.Run("mary and peter", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"Peter Parker", "Mary Jane"},
			employees.TopEarners([]models.Employee{mary, peter}, employees.TopEarnersLimit))
	})

	t.Run("ties keep upstream order", func(t *testing.T) {
		t.Parallel()

		staff := []models.Employee{
			{Name: "a", Salary: 10}, {Name: "b", Salary: 30}, {Name: "c", Salary: 10}, {Name: "d", Salary: 30},
		}

		assert.Equal(t, []string{"b", "d", "a", "c"}, employees.TopEarners(staff, employees.TopEarnersLimit))
	})

	t.Run("prefix of full descending sort", func(t *testing.T) {
		t.Parallel()

		staff := generateStaff(25)
		names := employees.TopEarners(staff, employees.TopEarnersLimit)
		require.Len(t, names, employees.TopEarnersLimit)

		sorted := slices.Clone(staff)
		slices.SortStableFunc(sorted, func(a, b models.Employee) int { return cmp.Compare(b.Salary, a.Salary) })
		for i, name := range names {
			assert.Equal(t, sorted[i].Name, name)
		}

		assert.Equal(t, names, employees.TopEarners(sorted, employees.TopEarnersLimit))
	})

	t.Run("input is not reordered", func(t *testing.T) {
		t.Parallel()

		staff := []models.Employee{mary, peter}
		_ = employees.TopEarners(staff, employees.TopEarnersLimit)

		assert.Equal(t, []models.Employee{mary, peter}, staff)
	})
}

func generateStaff(count int) []models.Employee {
	staff := make([]models.Employee, 0, count)
	for i := range count {
		staff = append(staff, models.Employee{
			Name:   fmt.Sprintf("employee-%02d", i),
			Salary: (i * 7919) % 1000,
		})
	}

	return staff
}
