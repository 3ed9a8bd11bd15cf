// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rememberme

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/taibuivan/greeter/internal/platform/apperr"
)

// cookieDelimiter separates the URL-encoded tokens inside the decoded cookie.
const cookieDelimiter = ":"

// ErrInvalidCookie rejects a value that does not decode to series and token.
var ErrInvalidCookie = apperr.Unauthorized("Invalid remember-me cookie")

// EncodeCookie renders series and token in the standard remember-me format:
// base64 of "urlencode(series):urlencode(token)" with padding removed.
func EncodeCookie(series, token string) string {
	plain := url.QueryEscape(series) + cookieDelimiter + url.QueryEscape(token)
	encoded := base64.StdEncoding.EncodeToString([]byte(plain))
	return strings.TrimRight(encoded, "=")
}

// DecodeCookie reverses [EncodeCookie]. Missing padding is restored first.
func DecodeCookie(value string) (series, token string, err error) {
	if remainder := len(value) % 4; remainder != 0 {
		value += strings.Repeat("=", 4-remainder)
	}

	decoded, decodeErr := base64.StdEncoding.DecodeString(value)
	if decodeErr != nil {
		return "", "", ErrInvalidCookie.WithCause(decodeErr)
	}

	parts := strings.Split(string(decoded), cookieDelimiter)
	if len(parts) != 2 {
		return "", "", ErrInvalidCookie
	}

	series, seriesErr := url.QueryUnescape(parts[0])
	token, tokenErr := url.QueryUnescape(parts[1])
	if seriesErr != nil || tokenErr != nil || series == "" || token == "" {
		return "", "", ErrInvalidCookie
	}

	return series, token, nil
}
