package classify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/HazeMiya/ai-2024/internal/errors"
	"github.com/HazeMiya/ai-2024/internal/llm"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// Classifier asks an oracle for the features of a synopsis.
type Classifier struct {
	oracle     llm.Oracle
	maxRetries int
	retryDelay time.Duration
	sleeper    func(time.Duration)
}

// Option customizes the classifier.
type Option func(*Classifier)

// WithMaxRetries sets the number of attempts per synopsis.
func WithMaxRetries(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Classifier) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// WithSleeper overrides how retry pauses are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Classifier) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// New creates a classifier over oracle.
func New(oracle llm.Oracle, opts ...Option) *Classifier {
	c := &Classifier{
		oracle:     oracle,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		sleeper:    time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify extracts features from synopsis. A blank synopsis yields empty
// features without calling the oracle. When every attempt fails the returned
// Features carry the failure in Error; the error return is reserved for
// context cancellation.
func (c *Classifier) Classify(ctx context.Context, synopsis string) (Features, error) {
	if strings.TrimSpace(synopsis) == "" {
		return Features{}, nil
	}

	prompt := BuildPrompt(synopsis)
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Features{}, err
		}

		text, err := c.oracle.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = llm.ErrEmptyResponse
		}
		if err == nil {
			f := featuresFrom(ParseResponse(text))
			if f.Empty() {
				slog.Warn("Response carried no known labels", "oracle", c.oracle.Name(), "attempt", attempt)
			}
			return f, nil
		}
		if errors.Is(err, context.Canceled) {
			return Features{}, err
		}

		lastErr = err
		slog.Warn("Classification attempt failed",
			"oracle", c.oracle.Name(),
			"attempt", attempt,
			"max_attempts", c.maxRetries,
			"error", err)
		if attempt < c.maxRetries {
			c.sleeper(c.retryDelay)
		}
	}

	exhausted := apperrors.NewRetryExhaustedError("classify", c.maxRetries, lastErr)
	return Features{Error: exhausted.Error()}, nil
}
