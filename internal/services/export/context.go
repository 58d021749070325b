package export

import "context"

type clientKey struct{}

// WithClient tags ctx with the caller identity recorded in the export journal.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

func ClientFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	client, _ := ctx.Value(clientKey{}).(string)
	return client
}
