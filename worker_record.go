package taskpool

import (
	"time"

	"github.com/ygrebnov/taskpool/internal/transport"
)

type workerStatus int

const (
	workerAvailable workerStatus = iota
	workerExecuting
	workerTerminated
)

// workerRecord is a worker's transport port plus its lifetime state. It is
// always accessed from the scheduler's single run loop goroutine.
type workerRecord struct {
	port   transport.Port
	status workerStatus

	// idleTimer is armed only while status == workerAvailable and the pool's
	// idle timeout is nonzero.
	idleTimer *time.Timer
}

func newWorkerRecord(port transport.Port) *workerRecord {
	return &workerRecord{port: port, status: workerAvailable}
}

func (w *workerRecord) stopIdleTimer() {
	if w.idleTimer != nil {
		w.idleTimer.Stop()
		w.idleTimer = nil
	}
}
