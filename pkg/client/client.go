// Package client is a Go client for the blog API. A Client sends requests;
// the Session it is built with holds the admin's bearer token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"herstory/internal/model"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// Client calls the blog API rooted at baseURL (e.g. http://localhost:8080/api).
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client bound to session.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session {
	return c.session
}

// PostForm is the typed post editor payload.
type PostForm struct {
	Title   string
	Excerpt string
	Content string
	Date    string
	Theme   string
	Author  string
}

// FormFromPost fills a form from an existing post.
func FormFromPost(p *model.BlogPost) PostForm {
	in := p.Input()
	return PostForm{
		Title:   in.Title,
		Excerpt: in.Excerpt,
		Content: in.Content,
		Date:    in.Date,
		Theme:   in.Theme,
		Author:  in.Author,
	}
}

// Input converts the form to the request body.
func (f PostForm) Input() model.PostInput {
	return model.PostInput{
		Title:   f.Title,
		Excerpt: f.Excerpt,
		Content: f.Content,
		Date:    f.Date,
		Theme:   f.Theme,
		Author:  f.Author,
	}
}

// Validate applies the same rules the server applies. It returns a *Error
// of KindValidation naming the first invalid field.
func (f PostForm) Validate() error {
	if err := f.Input().Validate(); err != nil {
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	return nil
}

type loginResponse struct {
	Token string             `json:"token"`
	User  model.AdminSummary `json:"user"`
}

type verifyResponse struct {
	User model.AdminSummary `json:"user"`
}

type postsResponse struct {
	Posts []model.BlogPost `json:"posts"`
}

// SubscribeResult is the outcome of a newsletter signup.
type SubscribeResult struct {
	Message           string `json:"message"`
	AlreadySubscribed bool   `json:"alreadySubscribed"`
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) (*model.AdminSummary, error) {
	c.session.begin()
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", model.LoginInput{Username: username, Password: password}, &resp)
	if err == nil && resp.Token == "" {
		err = &Error{Kind: KindDecode, Status: http.StatusOK, Message: "login response has no token"}
	}
	if err := c.session.finish(resp.Token, err); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Verify asks the server whether the held token is still accepted.
func (c *Client) Verify(ctx context.Context) (*model.AdminSummary, error) {
	c.session.begin()
	var resp verifyResponse
	token, err := c.requireToken()
	if err == nil {
		err = c.do(ctx, http.MethodGet, "/auth/verify", token, nil, &resp)
	}
	if err := c.session.finish("", err); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout discards the token. It makes no request.
func (c *Client) Logout() error {
	return c.session.Logout()
}

// ListPosts returns every post, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]model.BlogPost, error) {
	var resp postsResponse
	if err := c.call(ctx, http.MethodGet, "/blog", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// GetPost returns one post.
func (c *Client) GetPost(ctx context.Context, id string) (*model.BlogPost, error) {
	var post model.BlogPost
	if err := c.call(ctx, http.MethodGet, postPath(id), "", nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost validates the form locally, then creates the post.
func (c *Client) CreatePost(ctx context.Context, form PostForm) (*model.BlogPost, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}
	var post model.BlogPost
	if err := c.call(ctx, http.MethodPost, "/blog", token, form.Input(), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost replaces every field of the post.
func (c *Client) UpdatePost(ctx context.Context, id string, form PostForm) (*model.BlogPost, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}
	var post model.BlogPost
	if err := c.call(ctx, http.MethodPut, postPath(id), token, form.Input(), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost permanently removes the post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	token, err := c.requireToken()
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodDelete, postPath(id), token, nil, nil)
}

// Subscribe signs email up for the newsletter.
func (c *Client) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	var res SubscribeResult
	if err := c.call(ctx, http.MethodPost, "/newsletter/subscribe", "", model.SubscribeInput{Email: email}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func postPath(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	}
	return "/blog/" + url.PathEscape(id)
}

func (c *Client) requireToken() (string, error) {
	token := c.session.Token()
	if token == "" {
		return "", &Error{Kind: KindUnauthorized, Message: "not logged in"}
	}
	return token, nil
}

// call is do for operations outside login/verify: failures are recorded on
// the session, and an unauthorized result ends it.
func (c *Client) call(ctx context.Context, method, path, token string, body, out interface{}) error {
	err := c.do(ctx, method, path, token, body, out)
	if err != nil {
		c.session.fail(err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: "unexpected response body", Err: err}
	}
	return nil
}
