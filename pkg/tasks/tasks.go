// Package tasks models the task/assignment/subtask hierarchy and wraps the
// tasks endpoints.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/desklago/leadhub/pkg/api"
	"github.com/desklago/leadhub/pkg/session"
	"github.com/desklago/leadhub/pkg/users"
)

// Task statuses as the server reports them.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Priority labels, 1 through 3.
var PriorityLabels = map[int]string{1: "Low", 2: "Medium", 3: "High"}

// Subtask is a checkbox-level unit of work under one assignment. The server
// owns the checkbox; Done mirrors its 0/1 wire value.
type Subtask struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Done        intBool `json:"checkbox"`
}

// Assignment links one user to a task, with its own status and due date.
type Assignment struct {
	ID       int        `json:"id"`
	User     users.User `json:"user"`
	Status   string     `json:"status"`
	DueDate  string     `json:"due_date,omitempty"`
	Feedback string     `json:"feedback,omitempty"`
	Subtasks []Subtask  `json:"individual_tasks"`
}

// Task is the top of the hierarchy.
type Task struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    int          `json:"priority"`
	Status      string       `json:"status"`
	DueDate     string       `json:"due_date,omitempty"`
	CreatedAt   string       `json:"created_at"`
	Assignments []Assignment `json:"assigned_users"`
}

type intBool bool

func (b *intBool) UnmarshalJSON(raw []byte) error {
	s := string(raw)
	*b = s == "1" || s == `"1"` || s == "true"
	return nil
}

func (b intBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// Service wraps the /tasks endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches all tasks visible to the principal.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	body, err := s.client.Do(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	raw := gjson.GetBytes(body, "data").Raw
	if raw == "" {
		return nil, nil
	}
	var all []Task
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("malformed tasks payload: %w", err)
	}
	return all, nil
}

// Get fetches one task with its full assignment subtree.
func (s *Service) Get(ctx context.Context, id int) (Task, error) {
	body, err := s.client.Do(ctx, http.MethodGet, "/tasks/"+strconv.Itoa(id), nil)
	if err != nil {
		return Task{}, err
	}
	var t Task
	if err := json.Unmarshal([]byte(gjson.GetBytes(body, "data").Raw), &t); err != nil {
		return Task{}, fmt.Errorf("malformed task payload: %w", err)
	}
	return t, nil
}

// Create adds a new task.
func (s *Service) Create(ctx context.Context, title, description string, priority int, dueDate string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/tasks", map[string]any{
		"title":       title,
		"description": description,
		"priority":    priority,
		"due_date":    dueDate,
	})
	return err
}

// AssignUser assigns a user to a task. An empty dueDate defaults to today.
func (s *Service) AssignUser(ctx context.Context, taskID, userID int, dueDate string) error {
	if dueDate == "" {
		dueDate = time.Now().Format("2006-01-02")
	}
	_, err := s.client.Do(ctx, http.MethodPost, "/tasks/assign-user/"+strconv.Itoa(taskID), map[string]any{
		"user_id":  userID,
		"due_date": dueDate,
	})
	return err
}

// CreateSubtask adds a checkbox item under one assignment.
func (s *Service) CreateSubtask(ctx context.Context, taskID, assignmentID, userID int, title, description string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/tasks/individual-tasks", map[string]any{
		"task_id":              taskID,
		"task_user_assigns_id": assignmentID,
		"user_id":              userID,
		"title":                title,
		"description":          description,
	})
	return err
}

// ToggleSubtask flips one subtask checkbox on the server.
func (s *Service) ToggleSubtask(ctx context.Context, subtaskID int) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/tasks/individual-tasks/toggle-checkbox/"+strconv.Itoa(subtaskID), nil)
	return err
}

// AssignableUsers returns the users that may still be assigned to a task:
// staff roles only, minus anyone already assigned.
func AssignableUsers(all []users.User, t Task) []users.User {
	assigned := map[int]bool{}
	for _, a := range t.Assignments {
		assigned[a.User.ID] = true
	}
	var out []users.User
	for _, u := range all {
		switch u.Role {
		case session.RoleAdmin, session.RoleLeader, session.RoleMember:
			if !assigned[u.ID] {
				out = append(out, u)
			}
		}
	}
	return out
}
