package taskpool

// PoolStats is a point-in-time snapshot of scheduler occupancy.
type PoolStats struct {
	Workers   int
	Busy      int
	Idle      int
	Queued    int
	Completed uint64
}

// Stats returns the current occupancy snapshot. It is computed on the run
// loop so it reflects a consistent instant, never a torn read.
func (p *Pool) Stats() PoolStats {
	reply := make(chan PoolStats, 1)
	p.submit(func() {
		reply <- PoolStats{
			Workers:   len(p.workers),
			Busy:      len(p.pending),
			Idle:      len(p.available),
			Queued:    len(p.queue),
			Completed: p.completed,
		}
	})
	return <-reply
}
