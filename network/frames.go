package network

// FrameID identifies a requested frame callback.
type FrameID uint64

// Scheduler is the host's frame-pacing primitive. A requested callback runs
// once, on the next display frame, unless cancelled first.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

type frameRequest struct {
	id FrameID
	fn func()
}

// FrameQueue is a Scheduler that hosts pump once per display frame with
// RunFrame. It is not safe for concurrent use; request, cancel and run from
// the host's loop goroutine.
type FrameQueue struct {
	next    FrameID
	pending []*frameRequest
	running []*frameRequest
}

// RequestFrame queues fn for the next RunFrame.
func (q *FrameQueue) RequestFrame(fn func()) FrameID {
	q.next++
	q.pending = append(q.pending, &frameRequest{id: q.next, fn: fn})
	return q.next
}

// CancelFrame drops a queued callback. Unknown or already-run ids are ignored.
func (q *FrameQueue) CancelFrame(id FrameID) {
	for i, req := range q.pending {
		if req.id == id {
			req.fn = nil
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	for _, req := range q.running {
		if req.id == id {
			req.fn = nil
			return
		}
	}
}

// RunFrame runs the callbacks queued before this call and returns how many
// ran. Callbacks requested while running wait for the next frame.
func (q *FrameQueue) RunFrame() int {
	batch := q.pending
	q.pending = nil
	q.running = batch
	defer func() { q.running = nil }()

	ran := 0
	for _, req := range batch {
		if req.fn == nil {
			continue
		}
		fn := req.fn
		req.fn = nil
		fn()
		ran++
	}
	return ran
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}
