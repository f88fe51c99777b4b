package sched

const none = -1

// readyQueue is a FIFO of slot indices threaded through slot.next.
type readyQueue struct {
	head, tail int
	n          int
}

func newQueues(levels int) []readyQueue {
	qs := make([]readyQueue, levels)
	for i := range qs {
		qs[i] = readyQueue{head: none, tail: none}
	}
	return qs
}

func (q *readyQueue) push(slots []slot, i int) {
	slots[i].next = none
	if q.tail == none {
		q.head = i
	} else {
		slots[q.tail].next = i
	}
	q.tail = i
	q.n++
}

func (q *readyQueue) pop(slots []slot) (int, bool) {
	i := q.head
	if i == none {
		return none, false
	}
	q.head = slots[i].next
	if q.head == none {
		q.tail = none
	}
	slots[i].next = none
	q.n--
	return i, true
}

// remove unlinks i wherever it sits in the queue.
func (q *readyQueue) remove(slots []slot, i int) bool {
	prev := none
	for cur := q.head; cur != none; cur = slots[cur].next {
		if cur != i {
			prev = cur
			continue
		}
		if prev == none {
			q.head = slots[cur].next
		} else {
			slots[prev].next = slots[cur].next
		}
		if q.tail == cur {
			q.tail = prev
		}
		slots[cur].next = none
		q.n--
		return true
	}
	return false
}

// each visits queued indices head to tail.
func (q *readyQueue) each(slots []slot, fn func(i int)) {
	for cur := q.head; cur != none; cur = slots[cur].next {
		fn(cur)
	}
}
