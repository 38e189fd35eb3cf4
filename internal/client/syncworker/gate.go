package syncworker

import "sync"

// RecordingGate suspends background sync while audio capture is running, so
// network and database churn never competes with a recording in progress.
// The CLI acquires it before recording and releases it after.
type RecordingGate struct {
	mu   sync.Mutex
	held int
}

func (g *RecordingGate) Acquire() {
	g.mu.Lock()
	g.held++
	g.mu.Unlock()
}

func (g *RecordingGate) Release() {
	g.mu.Lock()
	if g.held > 0 {
		g.held--
	}
	g.mu.Unlock()
}

func (g *RecordingGate) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held > 0
}
