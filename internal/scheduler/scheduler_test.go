package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/insider_watchlist_bot/utils"
)

func TestWrap_PassesRequestIDAndDeadline(t *testing.T) {
	s := &Scheduler{jobTimeout: time.Minute}

	var gotRqID string
	var hasDeadline bool
	s.wrap(func(ctx context.Context) error {
		gotRqID = utils.GetRequestIDFromCtx(ctx)
		_, hasDeadline = ctx.Deadline()
		return nil
	}, "test")()

	if gotRqID == "" {
		t.Error("Expected request id in job context")
	}
	if !hasDeadline {
		t.Error("Expected job context with deadline")
	}
}

func TestWrap_RecoversPanicAndError(t *testing.T) {
	s := &Scheduler{}

	s.wrap(func(context.Context) error { panic("boom") }, "panicking")()
	s.wrap(func(context.Context) error { return errors.New("failed") }, "failing")()
}
