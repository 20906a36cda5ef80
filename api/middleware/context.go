package middleware

import "context"

type contextKey string

const (
	ctxAdminUser contextKey = "admin_user"
	ctxMachineID contextKey = "machine_id"
)

func AdminUserFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminUser).(string); ok {
		return v
	}
	return ""
}

func MachineIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxMachineID).(string); ok {
		return v
	}
	return ""
}

// WithAdminUser injects the authenticated admin username into the context.
func WithAdminUser(ctx context.Context, username string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAdminUser, username)
}
