package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	usersPath = "/users"
	cartsPath = "/carts"
)

func (c *Client) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodGet, usersPath+"/search/by-username", url.Values{"username": {username}}, nil, &user)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Username == "" && user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

func (c *Client) SearchUsers(ctx context.Context, username string) ([]domain.User, error) {
	return getList[domain.User](ctx, c, usersPath, url.Values{"username": {username}})
}

func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var user domain.User
	if err := c.do(ctx, http.MethodGet, usersPath+"/"+id, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a user. The backend signals success with any of a
// success flag, an id or an echoed username.
func (c *Client) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var resp struct {
		Success  bool   `json:"success"`
		ID       string `json:"_id"`
		Username string `json:"username"`
		Error    string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, usersPath, nil, user, &resp); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !resp.Success && resp.ID == "" && resp.Username == "" {
		msg := resp.Error
		if msg == "" {
			msg = "registration rejected"
		}
		return nil, &APIError{StatusCode: http.StatusOK, Message: msg}
	}

	created := user
	created.ID = resp.ID
	created.PasswordHash = ""
	return &created, nil
}

func (c *Client) CreateCart(ctx context.Context, userID, username string) error {
	if userID == "" {
		userID = primitive.NilObjectID.Hex()
	}
	now := time.Now().UTC()
	body := struct {
		UserID    string    `json:"userId"`
		Username  string    `json:"username"`
		Products  []any     `json:"products"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}{userID, username, []any{}, now, now}

	if err := c.do(ctx, http.MethodPost, cartsPath, nil, body, nil); err != nil {
		return fmt.Errorf("create cart for %s: %w", username, err)
	}
	return nil
}
