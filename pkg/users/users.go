// Package users wraps the user-management endpoints (superadmin surface).
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/desklago/leadhub/pkg/api"
	"github.com/desklago/leadhub/pkg/session"
)

// User is a managed account as the server returns it.
type User struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone,omitempty"`
	Address      string       `json:"address,omitempty"`
	Role         session.Role `json:"type"`
	Subscribed   intBool      `json:"is_subscribe"`
	ProfileImage string       `json:"profile_image,omitempty"`
}

// intBool decodes the server's 0/1 subscription flag.
type intBool bool

func (b *intBool) UnmarshalJSON(raw []byte) error {
	s := string(raw)
	*b = s == "1" || s == `"1"` || s == "true"
	return nil
}

// Registration is the multipart payload for creating a new account.
// RegUserID is the id of the superadmin performing the registration.
type Registration struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	Phone                string
	Address              string
	Role                 session.Role
	ProfileImagePath     string
	RegUserID            int
}

// Service wraps the /users and /register endpoints.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches all users. The list is not paginated server-side.
func (s *Service) List(ctx context.Context) ([]User, error) {
	body, err := s.client.Do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}
	raw := gjson.GetBytes(body, "data").Raw
	if raw == "" {
		return nil, nil
	}
	var all []User
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("malformed users payload: %w", err)
	}
	return all, nil
}

// ToggleSubscribe flips a user's subscription flag. Callers refetch the user
// list afterwards instead of patching local state.
func (s *Service) ToggleSubscribe(ctx context.Context, id int) error {
	_, err := s.client.Do(ctx, http.MethodPut, "/users/toggle-subscribe/"+strconv.Itoa(id), nil)
	return err
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, id int) error {
	_, err := s.client.Do(ctx, http.MethodDelete, "/users/"+strconv.Itoa(id), nil)
	return err
}

// Register creates a new account via the multipart registration form.
func (s *Service) Register(ctx context.Context, r Registration) error {
	fields := map[string]string{
		"name":                  r.Name,
		"email":                 r.Email,
		"password":              r.Password,
		"password_confirmation": r.PasswordConfirmation,
		"phone":                 r.Phone,
		"address":               r.Address,
		"type":                  string(r.Role),
		"reg_user_id":           strconv.Itoa(r.RegUserID),
	}
	var files []api.File
	if r.ProfileImagePath != "" {
		files = append(files, api.File{Field: "profile_image", Path: r.ProfileImagePath})
	}
	_, err := s.client.DoMultipart(ctx, "/register", fields, files...)
	return err
}
