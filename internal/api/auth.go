package api

import (
	"context"
	"fmt"
	"net/http"
)

// User is the authenticated user.
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginResponse is returned by sign-in and sign-up.
type LoginResponse struct {
	User User   `json:"user"`
	JWT  string `json:"jwt"`
}

// SignIn calls POST /auth/signin.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signin", req, &resp); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	return &resp, nil
}

// SignUp calls POST /auth/signup.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &resp, nil
}

// CurrentUser calls GET /auth/currentuser.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/currentuser", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &resp.User, nil
}

// Avatar is a selectable profile picture.
type Avatar struct {
	ID       string
	Label    string
	Category string
}

// Avatars is the catalog UpdateAvatar accepts.
var Avatars = []Avatar{
	{ID: "avatar1", Label: "Professional Man", Category: "Professional"},
	{ID: "avatar2", Label: "Professional Woman", Category: "Professional"},
	{ID: "avatar3", Label: "Developer Man", Category: "Tech"},
	{ID: "avatar4", Label: "Developer Woman", Category: "Tech"},
	{ID: "avatar5", Label: "Student Man", Category: "Academic"},
	{ID: "avatar6", Label: "Scientist Woman", Category: "Academic"},
	{ID: "avatar7", Label: "Artist Man", Category: "Creative"},
	{ID: "avatar8", Label: "Artist Woman", Category: "Creative"},
	{ID: "avatar9", Label: "Astronaut", Category: "Fun"},
	{ID: "avatar10", Label: "Superhero Man", Category: "Fun"},
	{ID: "avatar11", Label: "Superhero Woman", Category: "Fun"},
	{ID: "avatar12", Label: "Robot", Category: "Tech"},
}

// FindAvatar looks up an avatar by id.
func FindAvatar(id string) (Avatar, bool) {
	for _, a := range Avatars {
		if a.ID == id {
			return a, true
		}
	}
	return Avatar{}, false
}

// UpdateAvatar calls PUT /auth/avatar.
func (c *Client) UpdateAvatar(ctx context.Context, avatar string) error {
	body := map[string]string{"avatar": avatar}
	if err := c.doJSON(ctx, http.MethodPut, "/auth/avatar", body, nil); err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}
