// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/tinwheel/modelkit/internal/logging"
)

var debugEnabled bool

// SetDebug enables or disables query debug logging. Disabled by default.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

func logf(format string, v ...any) {
	if debugEnabled {
		logging.Debugf(format, v...)
	}
}

// debugHook is a bun.QueryHook that logs every issued query while debug
// logging is enabled.
type debugHook struct{}

func (debugHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (debugHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if !debugEnabled {
		return
	}
	dur := time.Since(event.StartTime)
	if event.Err != nil {
		logging.Debugf("query failed in %s: %s: %v", dur, event.Query, event.Err)
		return
	}
	logging.Debugf("query ok in %s: %s", dur, event.Query)
}
