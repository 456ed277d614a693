package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/johnwards/menuseed/internal/domain"
)

// Auth registers accounts through GoTrue.
type Auth struct {
	client *Client
}

// Auth returns a registrar backed by c.
func (c *Client) Auth() *Auth {
	return &Auth{client: c}
}

type authUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    string         `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// CreateUser signs up a new account. The display name is stored in the
// user metadata. An already registered email returns domain.ErrConflict.
func (a *Auth) CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error) {
	body := map[string]any{
		"email":    in.Email,
		"password": in.Password,
		"data":     map[string]string{"name": in.Name},
	}
	req, err := a.client.newRequest(ctx, http.MethodPost, a.client.baseURL+"/auth/v1/signup", body)
	if err != nil {
		return domain.User{}, err
	}

	resp, err := a.client.send(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("sign up %s: %w", in.Email, err)
	}

	u, err := decodeSignUp(resp.Body)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:        u.ID,
		Name:      in.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if name, ok := u.UserMetadata["name"].(string); ok && name != "" {
		user.Name = name
	}
	return user, nil
}

// decodeSignUp accepts both response shapes: a session wrapping the user
// when auto-confirm is on, or the bare user when email confirmation is
// pending.
func decodeSignUp(body []byte) (authUser, error) {
	var session struct {
		User *authUser `json:"user"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return authUser{}, fmt.Errorf("decode sign-up response: %w", err)
	}
	if session.User != nil && session.User.ID != "" {
		return *session.User, nil
	}

	var u authUser
	if err := json.Unmarshal(body, &u); err != nil {
		return authUser{}, fmt.Errorf("decode sign-up response: %w", err)
	}
	if u.ID == "" {
		return authUser{}, fmt.Errorf("sign-up response has no user id")
	}
	return u, nil
}
