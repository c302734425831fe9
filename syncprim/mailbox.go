package syncprim

import "nanokernel/kernel"

const mailboxCapacity = 8

// Mailbox is a small fixed-capacity ring buffer of messages with
// blocking Send and Recv, grounded on the same ring-buffer shape the
// teacher uses for its IPC queues. Unlike that queue, blocking here
// goes through the kernel's own suspend/resume protocol rather than a
// separate runnable/waiting flag per task.
type Mailbox struct {
	k     *kernel.Kernel
	slots [mailboxCapacity]any
	head  int
	tail  int
	count int

	// notFull and notEmpty are distinct signaler tokens so Send only
	// ever wakes a receiver and Recv only ever wakes a sender; sharing
	// one token between the two wait conditions would let a sender
	// wake another sender instead of the receiver that unblocked it.
	notFull  *int
	notEmpty *int
}

// NewMailbox constructs an empty mailbox.
func NewMailbox(k *kernel.Kernel) *Mailbox {
	return &Mailbox{k: k, notFull: new(int), notEmpty: new(int)}
}

// Send blocks until there is room, then enqueues msg and wakes the
// highest-priority receiver waiting on this mailbox, if any.
func (m *Mailbox) Send(msg any, deadline int64) bool {
	for m.count == mailboxCapacity {
		if !m.k.SuspendCallerUntil(deadline, m.notFull) {
			return false
		}
	}
	m.slots[m.tail] = msg
	m.tail = (m.tail + 1) % mailboxCapacity
	m.count++
	if next := m.k.FindNextWaitingFor(m.notEmpty); next != nil {
		m.k.Resume(next)
	}
	return true
}

// Recv blocks until a message is available, then dequeues and returns
// it, waking the highest-priority sender waiting for room, if any.
func (m *Mailbox) Recv(deadline int64) (any, bool) {
	for m.count == 0 {
		if !m.k.SuspendCallerUntil(deadline, m.notEmpty) {
			return nil, false
		}
	}
	msg := m.slots[m.head]
	m.slots[m.head] = nil
	m.head = (m.head + 1) % mailboxCapacity
	m.count--
	if next := m.k.FindNextWaitingFor(m.notFull); next != nil {
		m.k.Resume(next)
	}
	return msg, true
}
