package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kadro/pricing-estimator/internal/estimate"
	"github.com/kadro/pricing-estimator/internal/models"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the estimator server.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the estimator REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := c.do(ctx, http.MethodGet, "/api/roles", nil, &roles)
	return roles, err
}

func (c *Client) ListResources(ctx context.Context) ([]models.Resource, error) {
	var resources []models.Resource
	err := c.do(ctx, http.MethodGet, "/api/resources", nil, &resources)
	return resources, err
}

func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	err := c.do(ctx, http.MethodGet, "/api/templates", nil, &templates)
	return templates, err
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := c.do(ctx, http.MethodGet, "/api/projects", nil, &projects)
	return projects, err
}

func (c *Client) CreateRole(ctx context.Context, r models.Role) (models.Role, error) {
	var role models.Role
	err := c.do(ctx, http.MethodPost, "/api/roles", r, &role)
	return role, err
}

func (c *Client) UpdateRole(ctx context.Context, r models.Role) (models.Role, error) {
	var role models.Role
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/roles/%d", r.ID), r, &role)
	return role, err
}

func (c *Client) DeleteRole(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/roles/%d", id), nil, nil)
}

func (c *Client) CreateResource(ctx context.Context, r models.Resource) (models.Resource, error) {
	var res models.Resource
	err := c.do(ctx, http.MethodPost, "/api/resources", r, &res)
	return res, err
}

func (c *Client) UpdateResource(ctx context.Context, r models.Resource) (models.Resource, error) {
	var res models.Resource
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/resources/%d", r.ID), r, &res)
	return res, err
}

func (c *Client) DeleteResource(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/resources/%d", id), nil, nil)
}

// UpdateTemplate replaces the template's fields, its task list included.
func (c *Client) UpdateTemplate(ctx context.Context, t models.Template) (models.Template, error) {
	var tmpl models.Template
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/templates/%d", t.ID), t, &tmpl)
	return tmpl, err
}

func (c *Client) GetProject(ctx context.Context, id int) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil, &project)
	return project, err
}

func (c *Client) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodPost, "/api/projects", p, &project)
	return project, err
}

// UpdateProject sends the whole project as the patch. The server stamps
// updatedAt and keeps the id from the path.
func (c *Client) UpdateProject(ctx context.Context, p models.Project) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%d", p.ID), p, &project)
	return project, err
}

func (c *Client) DeleteProject(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, nil)
}

func (c *Client) InstantiateTemplate(ctx context.Context, templateID int, name string) (models.Project, error) {
	var project models.Project
	body := map[string]string{"name": name}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/templates/%d/instantiate", templateID), body, &project)
	return project, err
}

func (c *Client) GetEstimate(ctx context.Context, projectID int) (estimate.Estimate, error) {
	var est estimate.Estimate
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d/estimate", projectID), nil, &est)
	return est, err
}

func (c *Client) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var dash models.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &dash)
	return dash, err
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
	}
	return nil
}
