// Package api wraps the remote learning-platform REST API.
//
// Every request carries the caller's credential as a bearer authorization
// header when one is present. Requests are made exactly once: there is no
// retry or backoff, and failures propagate to the caller as-is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkarpov/studyhall/internal/model"
)

// CredentialSource supplies the current credential token.
// An empty token means no authorization header is sent.
type CredentialSource interface {
	Token() string
}

// Error is a failed API call: a non-2xx response with the server's message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned %d", e.Status)
	}
	return fmt.Sprintf("api: server returned %d: %s", e.Status, e.Message)
}

// Client is a thin request layer over the platform API.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   CredentialSource
}

// New creates an API client for the given base URL (e.g. "http://localhost:5000/api").
func New(baseURL string, creds CredentialSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
	}
}

// do performs a single request. A JSON body is sent when in is non-nil, and
// the response body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var remote struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := ""
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
			if json.Unmarshal(data, &remote) == nil {
				msg = remote.Error
				if msg == "" {
					msg = remote.Message
				}
			}
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token   string     `json:"token"`
	User    model.User `json:"user"`
	Message string     `json:"message"`
}

// Login authenticates with email and password and returns the signed
// credential token together with the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account. Admin accounts cannot be registered
// through this endpoint; the server rejects the role.
func (c *Client) Register(ctx context.Context, name, email, password string, role model.Role) error {
	in := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     string(role),
	}
	return c.do(ctx, http.MethodPost, "/auth/register", in, nil)
}

// Profile fetches the caller's profile.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, "/student/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile renames the caller.
func (c *Client) UpdateProfile(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/student/update-profile", map[string]string{"name": name}, nil)
}

// AssignedQuizzes lists teacher-published quizzes available to the caller.
func (c *Client) AssignedQuizzes(ctx context.Context) ([]model.AssignedQuiz, error) {
	var out []model.AssignedQuiz
	if err := c.do(ctx, http.MethodGet, "/student/assigned-quizzes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Courses lists course modules with the caller's enrollment status.
func (c *Client) Courses(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	if err := c.do(ctx, http.MethodGet, "/student/courses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Enroll enrolls the caller in a course.
func (c *Client) Enroll(ctx context.Context, courseID string) error {
	return c.do(ctx, http.MethodPost, "/student/enroll", map[string]string{"course_id": courseID}, nil)
}

// Progress fetches the caller's quiz history and summary stats.
func (c *Client) Progress(ctx context.Context) (*model.ProgressReport, error) {
	var out model.ProgressReport
	if err := c.do(ctx, http.MethodGet, "/progress/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProgress records a quiz result under the given topic.
func (c *Client) UpdateProgress(ctx context.Context, topic string, score int, status string) error {
	in := map[string]any{"topic": topic, "score": score, "status": status}
	return c.do(ctx, http.MethodPost, "/progress/update", in, nil)
}

// Chat sends one message to the AI tutor and returns its reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/chat", map[string]string{"message": message}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Recommendation fetches a personalized study plan based on weak topics.
func (c *Client) Recommendation(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/ai/recommendation", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// GenerateQuiz asks the AI service for a quiz on the given topic.
func (c *Client) GenerateQuiz(ctx context.Context, topic, difficulty string) ([]model.Question, error) {
	in := map[string]string{"topic": topic, "difficulty": difficulty}
	var out []model.Question
	if err := c.do(ctx, http.MethodPost, "/ai/generate-quiz", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateAdaptiveQuiz asks for a remedial quiz targeting the caller's
// weakest topic. The server picks the topic and returns it with the quiz.
func (c *Client) GenerateAdaptiveQuiz(ctx context.Context) (string, []model.Question, error) {
	var out struct {
		Topic string           `json:"topic"`
		Quiz  []model.Question `json:"quiz"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/generate-adaptive-quiz", nil, &out); err != nil {
		return "", nil, err
	}
	return out.Topic, out.Quiz, nil
}

// Analytics fetches the teacher's class report.
func (c *Client) Analytics(ctx context.Context) (*model.Analytics, error) {
	var out model.Analytics
	if err := c.do(ctx, http.MethodGet, "/teacher/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateQuiz publishes a quiz. In AI mode questions must be nil and the
// server generates them; in manual mode the given questions are published.
func (c *Client) CreateQuiz(ctx context.Context, topic string, mode model.PublishMode, questions []model.Question) error {
	in := map[string]any{"topic": topic, "mode": string(mode)}
	if mode == model.ModeManual {
		in["questions"] = questions
	}
	return c.do(ctx, http.MethodPost, "/teacher/create-quiz", in, nil)
}

// AdminStats fetches platform-wide counters.
func (c *Client) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	var out model.AdminStats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists all accounts.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUser removes an account permanently.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+id, nil, nil)
}
