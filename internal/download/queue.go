package download

import (
	"container/heap"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// priorityQueue orders *domain.DownloadTask by (priority desc, submission
// order asc), the §4.5 scheduling contract. It implements container/heap.
type priorityQueue []*domain.DownloadTask

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	if q[i].Priority != q[j].Priority {
		return q[i].Priority > q[j].Priority
	}
	return q[i].SubmittedSeq < q[j].SubmittedSeq
}

func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue) Push(x any) {
	*q = append(*q, x.(*domain.DownloadTask))
}

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// taskQueue wraps priorityQueue with heap operations and by-ID lookup, used
// by Manager to submit/cancel/requeue tasks.
type taskQueue struct {
	items priorityQueue
	byID  map[string]*domain.DownloadTask
}

func newTaskQueue() *taskQueue {
	return &taskQueue{byID: make(map[string]*domain.DownloadTask)}
}

func (q *taskQueue) push(t *domain.DownloadTask) {
	heap.Push(&q.items, t)
	q.byID[t.ID] = t
}

// pop removes and returns the highest-priority, earliest-submitted task, or
// nil if the queue is empty.
func (q *taskQueue) pop() *domain.DownloadTask {
	if q.items.Len() == 0 {
		return nil
	}
	t := heap.Pop(&q.items).(*domain.DownloadTask)
	delete(q.byID, t.ID)
	return t
}

func (q *taskQueue) get(id string) (*domain.DownloadTask, bool) {
	t, ok := q.byID[id]
	return t, ok
}

// remove removes a still-queued task by ID, returning it (and true), or
// (nil, false) if it wasn't queued (already popped for execution, unknown,
// etc).
func (q *taskQueue) remove(id string) (*domain.DownloadTask, bool) {
	t, ok := q.byID[id]
	if !ok {
		return nil, false
	}
	for i, candidate := range q.items {
		if candidate == t {
			heap.Remove(&q.items, i)
			break
		}
	}
	delete(q.byID, id)
	return t, true
}

func (q *taskQueue) len() int { return q.items.Len() }
