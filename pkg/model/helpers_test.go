package model

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
)

// trackingAllocator counts buffers that were allocated but not released.
type trackingAllocator struct {
	allocs      int
	releases    int
	outstanding int
}

func (a *trackingAllocator) Alloc(n int) []byte {
	a.allocs++
	a.outstanding++
	return make([]byte, n)
}

func (a *trackingAllocator) Release([]byte) {
	a.releases++
	a.outstanding--
}

// budgetAllocator fails once its byte budget is spent.
type budgetAllocator struct {
	remaining int
}

func (a *budgetAllocator) Alloc(n int) []byte {
	if n > a.remaining {
		return nil
	}
	a.remaining -= n
	return make([]byte, n)
}

func (a *budgetAllocator) Release(buf []byte) {
	a.remaining += len(buf)
}

// mockHandler implements Reader, Writer and Executor.
type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Read(ctx context.Context, uri URI) ([]byte, error) {
	args := m.Called(ctx, uri)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

func (m *mockHandler) Write(ctx context.Context, uri URI, value []byte) error {
	return m.Called(ctx, uri, value).Error(0)
}

func (m *mockHandler) Execute(ctx context.Context, uri URI, args []byte) error {
	return m.Called(ctx, uri, args).Error(0)
}

// recordingLogger captures trace events.
type recordingLogger struct {
	events []log.Event
}

func (l *recordingLogger) Log(event log.Event) {
	l.events = append(l.events, event)
}

func (l *recordingLogger) byCategory(c log.Category) []log.Event {
	var out []log.Event
	for _, e := range l.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

func constReader(value []byte) ReadFunc {
	return func(context.Context, URI) ([]byte, error) { return value, nil }
}
