package session

import (
	"context"
	"testing"

	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		s, err := mgr.Start(ctx, "")
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		_ = mgr.Discard(ctx, s.SessionID)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Discard", lockCount)
	}
}
