package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/marrowgate/ollm/internal/util"
	"github.com/marrowgate/ollm/theme"
)

// StyledLogger wraps slog.Logger with Theme-aware formatting for the parts of
// the proxy's output a human watches on a terminal: request lifecycle lines,
// retry/cancellation notices, and startup banners. Colour is applied only
// when useColor is true; otherwise every method degrades to plain text so
// JSON/file sinks never see ANSI escapes.
type StyledLogger struct {
	logger   *slog.Logger
	Theme    *theme.Theme
	useColor bool
}

func NewStyledLogger(logger *slog.Logger, appTheme *theme.Theme, useColor bool) *StyledLogger {
	if appTheme == nil {
		appTheme = theme.Default()
	}
	return &StyledLogger{
		logger:   logger,
		Theme:    appTheme,
		useColor: useColor,
	}
}

func NewWithTheme(cfg *Config) (*slog.Logger, *StyledLogger, func(), error) {
	logger, cleanup, err := New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	appTheme := theme.GetTheme(cfg.Theme)
	styledLogger := NewStyledLogger(logger, appTheme, util.ShouldUseColors())

	return logger, styledLogger, cleanup, nil
}

func (sl *StyledLogger) Debug(msg string, args ...any) { sl.logger.Debug(msg, args...) }
func (sl *StyledLogger) Info(msg string, args ...any)  { sl.logger.Info(msg, args...) }
func (sl *StyledLogger) Warn(msg string, args ...any)  { sl.logger.Warn(msg, args...) }
func (sl *StyledLogger) Error(msg string, args ...any) { sl.logger.Error(msg, args...) }

func (sl *StyledLogger) highlight(style *pterm.Style, s string) string {
	if !sl.useColor || style == nil {
		return s
	}
	return style.Sprint(s)
}

// InfoWithRoute logs a dispatched request at info level with the matched
// route highlighted, e.g. "dispatching GET /api/tags".
func (sl *StyledLogger) InfoWithRoute(msg, method, path string, args ...any) {
	route := fmt.Sprintf("%s %s", method, path)
	styled := fmt.Sprintf("%s %s", msg, sl.highlight(sl.Theme.Highlight, route))
	sl.logger.Info(styled, args...)
}

// InfoCancelled logs a client-cancellation as an expected, non-alarming
// outcome (spec: "logged, not alarmed").
func (sl *StyledLogger) InfoCancelled(msg, requestID string, args ...any) {
	styled := fmt.Sprintf("%s %s", msg, sl.highlight(sl.Theme.Muted, requestID))
	sl.logger.Info(styled, args...)
}

// WarnWithRetry logs a "no model loaded" retry attempt.
func (sl *StyledLogger) WarnWithRetry(msg, model string, args ...any) {
	styled := fmt.Sprintf("%s %s", msg, sl.highlight(sl.Theme.Warn, model))
	sl.logger.Warn(styled, args...)
}

func (sl *StyledLogger) ErrorWithEndpoint(msg, endpoint string, args ...any) {
	styled := fmt.Sprintf("%s %s", msg, sl.highlight(sl.Theme.Error, endpoint))
	sl.logger.Error(styled, args...)
}

func (sl *StyledLogger) GetUnderlying() *slog.Logger { return sl.logger }

func (sl *StyledLogger) WithRequestID(requestID string) *StyledLogger {
	return sl.With("request_id", requestID)
}

func (sl *StyledLogger) With(args ...any) *StyledLogger {
	return &StyledLogger{
		logger:   sl.logger.With(args...),
		Theme:    sl.Theme,
		useColor: sl.useColor,
	}
}

// LogContext separates the short, user-facing line a terminal sees from the
// fuller set of attributes that only the file sink receives.
type LogContext struct {
	UserArgs     []any
	DetailedArgs []any
}

func (sl *StyledLogger) InfoWithContext(msg string, ctx LogContext) {
	sl.logWithContext(LogLevelInfo, msg, ctx)
}

func (sl *StyledLogger) WarnWithContext(msg string, ctx LogContext) {
	sl.logWithContext(LogLevelWarn, msg, ctx)
}

func (sl *StyledLogger) ErrorWithContext(msg string, ctx LogContext) {
	sl.logWithContext(LogLevelError, msg, ctx)
}

func (sl *StyledLogger) logWithContext(level, msg string, ctx LogContext) {
	switch level {
	case LogLevelInfo:
		sl.logger.Info(msg, ctx.UserArgs...)
	case LogLevelWarn:
		sl.logger.Warn(msg, ctx.UserArgs...)
	case LogLevelError:
		sl.logger.Error(msg, ctx.UserArgs...)
	}

	if len(ctx.DetailedArgs) == 0 {
		return
	}

	allArgs := make([]any, 0, len(ctx.UserArgs)+len(ctx.DetailedArgs))
	allArgs = append(allArgs, ctx.UserArgs...)
	allArgs = append(allArgs, ctx.DetailedArgs...)

	detailedCtx := context.WithValue(context.Background(), DefaultDetailedCookie, true)

	switch level {
	case LogLevelInfo:
		sl.logger.InfoContext(detailedCtx, msg, allArgs...)
	case LogLevelWarn:
		sl.logger.WarnContext(detailedCtx, msg, allArgs...)
	case LogLevelError:
		sl.logger.ErrorContext(detailedCtx, msg, allArgs...)
	}
}
