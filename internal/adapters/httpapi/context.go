package httpapi

import "context"

type advisorKey struct{}

func WithAdvisor(ctx context.Context, advisorID string) context.Context {
	return context.WithValue(ctx, advisorKey{}, advisorID)
}

func AdvisorFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(advisorKey{}).(string)
	return v, ok && v != ""
}
