package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/bytedance/sonic"
)

// Client - REST-клиент /api/v1 от имени одного пользователя.
// Реализует board.TaskAPI.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Token() string { return c.token }

// APIError - ответ сервера с кодом не 2xx
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap дает errors.Is сопоставить ответ с доменными ошибками
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return entity.ErrInvalidTaskData
	case http.StatusUnauthorized:
		return entity.ErrUnauthorized
	case http.StatusNotFound:
		return entity.ErrTaskNotFound
	default:
		return nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := sonic.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = sonic.Unmarshal(data, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return sonic.Unmarshal(data, out)
}

// Login запоминает полученный access-токен
func (c *Client) Login(ctx context.Context, email, password string) (*entity.LoginResponse, error) {
	var resp entity.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", entity.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	return &resp, nil
}

func (c *Client) List(ctx context.Context) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/board", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Page(ctx context.Context, q entity.ListTasksQuery) (*entity.TaskPage, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	path := "/api/v1/tasks"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var page entity.TaskPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Create(ctx context.Context, title string, status entity.TaskStatus) (*entity.Task, error) {
	var task entity.Task
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks", entity.CreateTaskRequest{Title: title, Status: status}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Update(ctx context.Context, req entity.UpdateTaskRequest) (*entity.Task, error) {
	if req.ID == "" {
		return nil, errors.New("api: task id is required")
	}
	body := struct {
		Title  *string            `json:"title,omitempty"`
		Status *entity.TaskStatus `json:"status,omitempty"`
	}{req.Title, req.Status}

	var task entity.Task
	if err := c.do(ctx, http.MethodPatch, "/api/v1/tasks/"+url.PathEscape(req.ID), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Delete(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(taskID), nil, nil)
}
