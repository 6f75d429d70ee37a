package auth

import "context"

type ctxKey string

const contextProfileKey ctxKey = "profile"

func ContextWithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, contextProfileKey, p)
}

func ProfileFromContext(ctx context.Context) (*Profile, bool) {
	p, ok := ctx.Value(contextProfileKey).(*Profile)
	return p, ok && p != nil
}
