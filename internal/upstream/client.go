package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UnknownOlympus/iris/internal/apperr"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/google/uuid"
)

const (
	maxMessageLen = 512
	// canonicalIDLen is the length of the hyphenated 8-4-4-4-12 identifier form.
	canonicalIDLen = 36
)

// Client talks to the upstream employee directory. Every method performs exactly one HTTP call.
type Client struct {
	log     *slog.Logger
	client  *http.Client
	metrics *metrics.Metrics
	baseURL string
}

// NewClient creates an upstream client for the employee collection at baseURL.
func NewClient(log *slog.Logger, client *http.Client, metrics *metrics.Metrics, baseURL string) *Client {
	return &Client{
		log:     log.With(slog.String("division", "upstream")),
		client:  client,
		metrics: metrics,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the employee collection url the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchAll returns every employee in the order reported upstream.
func (c *Client) FetchAll(ctx context.Context) ([]models.Employee, error) {
	c.log.DebugContext(ctx, "Fetching all employees", "url", c.baseURL)

	data, _, err := call[[]EmployeeDTO](ctx, c, "fetch_all", http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}
	if data == nil {
		return nil, apperr.NewExternalServiceError(http.StatusBadGateway, "Fetching employees failed")
	}

	employees := make([]models.Employee, 0, len(*data))
	for _, dto := range *data {
		employees = append(employees, dto.ToModel())
	}

	c.metrics.EmployeesFetched.Add(float64(len(employees)))
	c.log.InfoContext(ctx, "Fetched employees", "count", len(employees))

	return employees, nil
}

// FetchByID returns the employee with the given identifier.
// It fails with apperr.ErrBadRequest for a malformed identifier and with
// apperr.ErrNotFound when the upstream does not know the employee.
func (c *Client) FetchByID(ctx context.Context, id string) (models.Employee, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || len(id) != canonicalIDLen {
		return models.Employee{}, fmt.Errorf("%w: invalid UUID format: %s", apperr.ErrBadRequest, id)
	}

	target := c.baseURL + "/" + parsed.String()
	c.log.DebugContext(ctx, "Fetching employee by ID", "id", parsed.String())

	data, status, err := call[EmployeeDTO](ctx, c, "fetch_by_id", http.MethodGet, target, nil)
	if status == http.StatusNotFound {
		return models.Employee{}, fmt.Errorf("%w: employee %s", apperr.ErrNotFound, parsed)
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to fetch employee %s: %w", parsed, err)
	}
	if data == nil {
		return models.Employee{}, fmt.Errorf("%w: employee %s", apperr.ErrNotFound, parsed)
	}

	return data.ToModel(), nil
}

// Create posts a new employee and returns the record with the upstream-assigned fields.
func (c *Client) Create(ctx context.Context, input models.CreateEmployeeRequest) (models.Employee, error) {
	c.log.DebugContext(ctx, "Creating new employee", "name", input.Name)

	data, _, err := call[EmployeeDTO](ctx, c, "create", http.MethodPost, c.baseURL, input)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	if data == nil {
		return models.Employee{}, apperr.NewExternalServiceError(http.StatusBadGateway, "Failed to create employee")
	}

	c.log.InfoContext(ctx, "Employee created successfully", "name", data.Name, "id", data.ID)

	return data.ToModel(), nil
}

// DeleteByName asks the upstream to delete the employee with the given name.
// A negative upstream answer is reported as an ExternalServiceError.
func (c *Client) DeleteByName(ctx context.Context, name string) error {
	c.log.DebugContext(ctx, "Deleting employee", "name", name)

	data, _, err := call[bool](ctx, c, "delete_by_name", http.MethodDelete, c.baseURL, DeleteEmployeeRequest{Name: name})
	if err != nil {
		return fmt.Errorf("failed to delete employee %q: %w", name, err)
	}
	if data == nil {
		return apperr.NewExternalServiceError(http.StatusBadGateway, "Internal server error")
	}
	if !*data {
		c.log.ErrorContext(ctx, "Failed to delete employee", "name", name)
		return apperr.NewExternalServiceError(http.StatusInternalServerError, "Failed to delete employee.")
	}

	return nil
}

// call performs one request and unwraps the envelope. It returns the payload (nil for `data: null`)
// together with the upstream status code, which is zero when no response was received.
func call[T any](
	ctx context.Context,
	c *Client,
	operation, method, target string,
	body any,
) (*T, int, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		c.metrics.UpstreamDuration.WithLabelValues(operation).Observe(duration)
	}()

	req, err := newRequest(ctx, method, target, body)
	if err != nil {
		c.observe(operation, "failure")
		return nil, 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(operation, "failure")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, fmt.Errorf("request to %s aborted: %w", target, ctxErr)
		}

		return nil, 0, fmt.Errorf("failed to request %s: %w", target,
			apperr.NewExternalServiceError(http.StatusBadGateway, err.Error()))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(operation, "failure")
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w",
			apperr.NewExternalServiceError(http.StatusBadGateway, err.Error()))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode == http.StatusNotFound {
			c.observe(operation, "not_found")
		} else {
			c.observe(operation, "failure")
		}
		c.log.WarnContext(ctx, "Upstream returned error status",
			"operation", operation, "status_code", resp.StatusCode)

		return nil, resp.StatusCode, apperr.NewExternalServiceError(resp.StatusCode, errorMessage(resp.StatusCode, payload))
	}

	envelope, err := decodeEnvelope[T](payload)
	if err != nil {
		c.observe(operation, "failure")
		return nil, resp.StatusCode, apperr.NewExternalServiceError(http.StatusBadGateway, err.Error())
	}
	if envelope.Status == StatusError {
		c.observe(operation, "failure")
		message := envelope.Message
		if message == "" {
			message = statusValues[StatusError]
		}

		return nil, resp.StatusCode, apperr.NewExternalServiceError(http.StatusBadGateway, message)
	}

	c.observe(operation, "success")

	return envelope.Data, resp.StatusCode, nil
}

func newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", target, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

var errMalformedEnvelope = errors.New("malformed upstream response")

func decodeEnvelope[T any](payload []byte) (*Envelope[T], error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: empty body", errMalformedEnvelope)
	}

	var envelope *Envelope[T]
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", errMalformedEnvelope, err.Error())
	}
	if envelope == nil || envelope.Status == "" {
		return nil, fmt.Errorf("%w: missing status", errMalformedEnvelope)
	}

	return envelope, nil
}

// errorMessage extracts the message of an error response, falling back to the status text and body.
func errorMessage(statusCode int, payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	text := strings.TrimSpace(string(payload))
	if text == "" {
		return http.StatusText(statusCode)
	}
	if len(text) > maxMessageLen {
		cut := maxMessageLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}

	return fmt.Sprintf("%s: %s", http.StatusText(statusCode), text)
}

func (c *Client) observe(operation, result string) {
	c.metrics.UpstreamRequests.WithLabelValues(operation, result).Inc()
}
