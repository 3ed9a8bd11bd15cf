// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import "github.com/taibuivan/greeter/internal/platform/constants"

// ActorKey selects the bucket of a request.
//
// An authenticated username wins; otherwise the remote address is used. An
// anonymous IP and a user behind that same IP therefore draw from independent
// buckets.
func ActorKey(username, remoteAddress string) string {
	if username != "" {
		return constants.RateLimitKeyUser + username
	}
	return constants.RateLimitKeyIP + remoteAddress
}
