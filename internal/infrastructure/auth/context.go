package auth

import "context"

type userIDKey struct{}

// WithUserID кладёт идентификатор аутентифицированного пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext возвращает "" если пользователь не аутентифицирован
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
