package audit

import (
	"context"
	"encoding/json"

	"github.com/hazyhaar/uijit/kit"
)

// Middleware returns an endpoint middleware that records every invocation
// under the given action name. Entries go through the async path so audit
// writes never sit on the request path.
func Middleware(logger *SQLiteLogger, action string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			resp, err := next(ctx, req)

			params := ""
			if req != nil {
				if data, mErr := json.Marshal(req); mErr == nil {
					params = string(data)
				}
			}
			entry := &Entry{
				Action:     action,
				Parameters: params,
				DeviceID:   kit.GetDeviceID(ctx),
				Transport:  kit.GetTransport(ctx),
				RequestID:  kit.GetRequestID(ctx),
			}
			if err != nil {
				entry.Error = err.Error()
			}
			logger.LogAsync(entry)

			return resp, err
		}
	}
}
