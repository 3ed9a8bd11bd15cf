// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It hides the difference between JSON and form bodies so the login and signup
handlers accept both, and exposes the session claims placed in the context by
the authentication middleware.
*/
package requestutil

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/taibuivan/greeter/internal/platform/apperr"
	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/ctxutil"
	"github.com/taibuivan/greeter/internal/platform/sec"
	"github.com/taibuivan/greeter/internal/platform/validate"
)

// maxBodyBytes caps credential payloads.
const maxBodyBytes = 1 << 16

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, request.Body, maxBodyBytes)).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Credentials is the username/password payload of signup and login.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

/*
DecodeCredentials reads [Credentials] from either a JSON body or an
application/x-www-form-urlencoded form.

Form checkboxes are accepted as "on", "true" or "1".
*/
func DecodeCredentials(request *http.Request) (*Credentials, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))

	if mediaType == "application/json" {
		var credentials Credentials
		if err := DecodeJSON(request, &credentials); err != nil {
			return nil, err
		}
		return &credentials, nil
	}

	request.Body = http.MaxBytesReader(nil, request.Body, maxBodyBytes)
	if err := request.ParseForm(); err != nil {
		return nil, apperr.ValidationError("Invalid form payload")
	}

	return &Credentials{
		Username:   request.PostForm.Get("username"),
		Password:   request.PostForm.Get("password"),
		RememberMe: checkbox(request.PostForm.Get("rememberMe")),
	}, nil
}

func checkbox(value string) bool {
	if value == "on" {
		return true
	}
	checked, _ := strconv.ParseBool(value)
	return checked
}

/*
Claims extracts the authenticated session claims from the request context.

Returns nil if the request is anonymous.
*/
func Claims(request *http.Request) *sec.SessionClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the session claims.

Returns:
  - *sec.SessionClaims: The authenticated session
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredClaims(request *http.Request) (*sec.SessionClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}
