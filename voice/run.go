package voice

import (
	"go-cvkeys/debug"
	"go-cvkeys/keys"
	"go-cvkeys/queue"
)

// Run consumes events until q is closed and drained. Each Pop parks the
// goroutine until the producer pushes.
func (v *Voice) Run(q *queue.Queue) {
	for {
		ev, ok := q.Pop()
		if !ok {
			return
		}
		v.apply(ev)
	}
}

// RunSignalled waits for the queue's notification and drains every pending
// event on each wakeup.
func (v *Voice) RunSignalled(q *queue.Queue) {
	for {
		select {
		case <-q.Notify():
			v.drain(q)
		case <-q.Done():
			v.drain(q)
			return
		}
	}
}

func (v *Voice) drain(q *queue.Queue) {
	for {
		ev, ok := q.TryPop()
		if !ok {
			return
		}
		v.apply(ev)
	}
}

func (v *Voice) apply(ev keys.Event) {
	if err := v.Handle(ev); err != nil {
		debug.Log("voice", "%s: %v", ev, err)
	}
}
