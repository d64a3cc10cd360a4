//go:build linux

package linux

import (
	"sync"

	"golang.org/x/sys/unix"
)

// pollDesc describes a file descriptor being watched.
type pollDesc struct {
	fd       int
	callback func(events uint32)
}

// poller is an epoll-based reactor shared by the hotplug monitor and any
// device handle that wants async readiness notification instead of a
// dedicated blocking-read goroutine.
type poller struct {
	epfd   int
	wakefd int

	mu      sync.Mutex
	fds     map[int]*pollDesc
	running bool
	done    chan struct{}
}

func newPoller() (*poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}

	p := &poller{
		epfd:   epfd,
		wakefd: wakefd,
		fds:    make(map[int]*pollDesc),
		done:   make(chan struct{}),
	}

	if err := p.addFD(wakefd, unix.EPOLLIN, nil); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, err
	}

	return p, nil
}

func (p *poller) close() error {
	p.mu.Lock()
	if p.running {
		close(p.done)
		p.wakeLocked()
	}
	p.mu.Unlock()

	unix.Close(p.wakefd)
	return unix.Close(p.epfd)
}

func (p *poller) addFD(fd int, events uint32, callback func(uint32)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}

	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return err
	}
	p.fds[fd] = &pollDesc{fd: fd, callback: callback}
	return nil
}

func (p *poller) delFD(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.fds, fd)
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *poller) wake() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wakeLocked()
}

func (p *poller) wakeLocked() error {
	buf := [8]byte{1}
	_, err := unix.Write(p.wakefd, buf[:])
	return err
}

// run blocks, dispatching readiness callbacks, until close is called.
func (p *poller) run() error {
	var events [maxEpollEvents]unix.EpollEvent

	p.mu.Lock()
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	for {
		select {
		case <-p.done:
			return nil
		default:
		}

		n, err := unix.EpollWait(p.epfd, events[:], -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			evts := events[i].Events

			if fd == p.wakefd {
				var buf [8]byte
				unix.Read(p.wakefd, buf[:])
				continue
			}

			p.mu.Lock()
			desc, ok := p.fds[fd]
			p.mu.Unlock()

			if ok && desc.callback != nil {
				desc.callback(evts)
			}
		}
	}
}
