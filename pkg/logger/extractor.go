package logger

import (
	"context"
	"log/slog"
)

// StringExtractor returns an extractor that logs the non-empty string stored
// in ctx under key as attribute name.
func StringExtractor(name string, key any) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := ctx.Value(key).(string)
		if !ok || v == "" {
			return slog.Attr{}, false
		}
		return slog.String(name, v), true
	}
}
