package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func bindCredentials(c echo.Context) (credentials, error) {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return req, badRequest("invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return req, badRequest("username and password are required")
	}
	return req, nil
}

func (s *Server) register(c echo.Context) error {
	if !s.opts.AllowRegistration {
		return errRegistrationClosed
	}
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}
	user, err := s.users.Register(req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"username":  user.Username,
		"createdAt": user.CreatedAt,
	})
}

func (s *Server) login(c echo.Context) error {
	req, err := bindCredentials(c)
	if err != nil {
		return err
	}
	user, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		s.logger.Warn("login failed", "user", req.Username)
		return err
	}
	token, session, err := s.tokens.Issue(user.Username)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		Username:  user.Username,
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) logout(c echo.Context) error {
	s.tokens.Revoke(sessionFrom(c))
	s.drafts.clear(currentUser(c))
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}
