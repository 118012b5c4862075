package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rescuelink/pkg/types"

	"github.com/go-playground/form/v4"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ErrConnectivity is returned when the API could not be reached at all.
var ErrConnectivity = errors.New("api unreachable")

// APIError is a non 2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

type messageBody struct {
	Message string `json:"message"`
}

var encoder = form.NewEncoder()

type Client struct {
	http   *resty.Client
	logger *logrus.Logger
}

func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: http, logger: logger}
}

func (c *Client) ListReports(ctx context.Context, filter types.ReportFilter) ([]*types.Report, error) {
	query, err := encoder.Encode(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report filter: %w", err)
	}

	var out []*types.Report
	req := c.http.R().SetQueryParamsFromValues(query).SetResult(&out)
	if err := c.do(ctx, req, resty.MethodGet, "/api/reports"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) Report(ctx context.Context, id string) (*types.Report, error) {
	var out types.Report
	req := c.http.R().SetPathParam("id", id).SetResult(&out)
	if err := c.do(ctx, req, resty.MethodGet, "/api/reports/{id}"); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Views(ctx context.Context) (types.Views, error) {
	var out types.Views
	req := c.http.R().SetResult(&out)
	if err := c.do(ctx, req, resty.MethodGet, "/api/reports/views"); err != nil {
		return types.Views{}, err
	}

	return out, nil
}

func (c *Client) SubmitReport(ctx context.Context, sub types.ReportSubmission) (*types.Report, error) {
	var out types.Report
	req := c.http.R().SetBody(sub).SetResult(&out)
	if err := c.do(ctx, req, resty.MethodPost, "/api/reports"); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) PatchReport(ctx context.Context, id string, patch types.ReportPatch) (*types.Report, error) {
	var out types.ReportUpdatedResponse
	req := c.http.R().SetPathParam("id", id).SetBody(patch).SetResult(&out)
	if err := c.do(ctx, req, resty.MethodPatch, "/api/reports/{id}"); err != nil {
		return nil, err
	}
	if out.Report == nil {
		return nil, fmt.Errorf("update of report %s returned no report", id)
	}

	return out.Report, nil
}

func (c *Client) ListContacts(ctx context.Context) ([]*types.Contact, error) {
	var out []*types.Contact
	req := c.http.R().SetResult(&out)
	if err := c.do(ctx, req, resty.MethodGet, "/api/contacts"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) CreateContact(ctx context.Context, in types.ContactInput) (*types.Contact, error) {
	var out types.Contact
	req := c.http.R().SetBody(in).SetResult(&out)
	if err := c.do(ctx, req, resty.MethodPost, "/api/contacts"); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) do(ctx context.Context, req *resty.Request, method, path string) error {
	resp, err := req.SetContext(ctx).SetError(&messageBody{}).Execute(method, path)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Warn("api request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrConnectivity, method, path, err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
		if body, ok := resp.Error().(*messageBody); ok && body.Message != "" {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	return nil
}
