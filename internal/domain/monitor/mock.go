package monitor

import "context"

type MockMonitor struct {
	StartBlockFunc func(ctx context.Context) uint64
	WatchFunc      func(ctx context.Context, req WatchRequest, onFound func(Confirmation)) (WatchResult, error)
}

func (m *MockMonitor) StartBlock(ctx context.Context) uint64 {
	if m.StartBlockFunc != nil {
		return m.StartBlockFunc(ctx)
	}

	return 0
}

func (m *MockMonitor) Watch(
	ctx context.Context, req WatchRequest, onFound func(Confirmation),
) (WatchResult, error) {
	if m.WatchFunc != nil {
		return m.WatchFunc(ctx, req, onFound)
	}

	return WatchResult{State: StateTimeout, Attempts: req.MaxAttempts}, nil
}
