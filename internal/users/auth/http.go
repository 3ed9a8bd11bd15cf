// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	requestutil "github.com/taibuivan/greeter/internal/platform/request"
	"github.com/taibuivan/greeter/internal/platform/respond"
	"github.com/taibuivan/greeter/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the account and session endpoints.
type Handler struct {
	authService *Service
	sessions    *Sessions
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, sessions *Sessions) *Handler {
	return &Handler{authService: service, sessions: sessions}
}

// # Response Payloads

type sessionResponse struct {
	User       *User `json:"user"`
	RememberMe bool  `json:"rememberMe"`
}

type whoAmIResponse struct {
	Authenticated bool     `json:"authenticated"`
	Username      string   `json:"username,omitempty"`
	Authorities   []string `json:"authorities"`
	Method        string   `json:"method,omitempty"`
}

/*
Signup creates an account and signs it in.

POST /signup

Request:
  - Body: JSON or form (username, password, rememberMe)

Response:
  - 201: sessionResponse
  - 400: Validation failure
  - 409: Username already taken
*/
func (handler *Handler) Signup(writer http.ResponseWriter, request *http.Request) {
	credentials, err := requestutil.DecodeCredentials(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Signup(request.Context(), SignupInput{
		Username: credentials.Username,
		Password: credentials.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	remember := handler.remember(credentials.RememberMe)
	if _, err := handler.sessions.Establish(request.Context(), writer, user, remember); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, sessionResponse{User: user, RememberMe: remember})
}

/*
Login authenticates with username and password.

POST /login

Request:
  - Body: JSON or form (username, password, rememberMe)

Response:
  - 200: sessionResponse, session cookie and optionally remember-me cookie
  - 401: Invalid credentials
*/
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	credentials, err := requestutil.DecodeCredentials(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, credentials.Username).
		Required(FieldPassword, credentials.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Authenticate(request.Context(), credentials.Username, credentials.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	remember := handler.remember(credentials.RememberMe)
	if _, err := handler.sessions.Establish(request.Context(), writer, user, remember); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{User: user, RememberMe: remember})
}

/*
Logout revokes the caller's session and remember-me series and clears both cookies.

POST /logout

Response:
  - 204: No Content
*/
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.sessions.Terminate(request.Context(), writer, requestutil.Claims(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
WhoAmI reports the identity attached to the request.

The body is a bare document, not wrapped in the data envelope.

GET /api/whoami

Response:
  - 200: whoAmIResponse
*/
func (handler *Handler) WhoAmI(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)
	if claims == nil {
		respond.JSON(writer, http.StatusOK, whoAmIResponse{Authorities: []string{}})
		return
	}

	respond.JSON(writer, http.StatusOK, whoAmIResponse{
		Authenticated: true,
		Username:      claims.Username,
		Authorities:   claims.Authorities(),
		Method:        claims.Method,
	})
}

func (handler *Handler) remember(requested bool) bool {
	return requested || handler.sessions.options.AlwaysRemember
}
