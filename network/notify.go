package network

// ResizeSource delivers viewport resize notifications. Subscribe returns a
// function that detaches the listener.
type ResizeSource interface {
	Subscribe(fn func()) (detach func())
}

type listener struct {
	fn func()
}

// Notifier is a ResizeSource fired explicitly by the host. Listeners run
// synchronously, in subscription order, on the goroutine calling Notify.
type Notifier struct {
	listeners []*listener
}

// Subscribe registers fn. The returned detach func is safe to call more than
// once.
func (n *Notifier) Subscribe(fn func()) func() {
	l := &listener{fn: fn}
	n.listeners = append(n.listeners, l)
	return func() {
		for i, cur := range n.listeners {
			if cur == l {
				n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every listener subscribed at the time of the call.
func (n *Notifier) Notify() {
	snapshot := append([]*listener(nil), n.listeners...)
	for _, l := range snapshot {
		l.fn()
	}
}

// Len returns the number of attached listeners.
func (n *Notifier) Len() int {
	return len(n.listeners)
}
