//go:build linux

package linux

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
	"golang.org/x/sys/unix"
)

// hotplugMonitor watches NETLINK_KOBJECT_UEVENT for hidraw add/remove
// events and republishes them as backend.Event values.
type hotplugMonitor struct {
	fd   int
	p    *poller
	buf  [uEventBufferSize]byte
	out  chan backend.Event
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newHotplugMonitor(p *poller) (*hotplugMonitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, netlinkKObjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: netlinkGroupKernel}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}

	h := &hotplugMonitor{
		fd:   fd,
		p:    p,
		out:  make(chan backend.Event, 16),
		done: make(chan struct{}),
	}

	if err := p.addFD(fd, unix.EPOLLIN, h.onReadable); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return h, nil
}

func (h *hotplugMonitor) events() <-chan backend.Event { return h.out }

func (h *hotplugMonitor) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.done)
	h.p.delFD(h.fd)
	unix.Close(h.fd)
	close(h.out)
}

func (h *hotplugMonitor) onReadable(_ uint32) {
	for {
		n, err := unix.Read(h.fd, h.buf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			return
		}
		if n <= 0 {
			return
		}
		h.handleDatagram(h.buf[:n])
	}
}

func (h *hotplugMonitor) handleDatagram(raw []byte) {
	ev, ok := parseUEvent(raw)
	if !ok {
		return
	}
	if ev.subsystem != "hidraw" {
		return
	}

	var kind backend.EventKind
	switch ev.action {
	case ueventAdd, ueventBind:
		kind = backend.EventConnected
	case ueventRemove, ueventUnbind:
		kind = backend.EventDisconnected
	default:
		return
	}

	name := hidrawNameFromDevpath(ev.devpath)
	if name == "" {
		return
	}

	infos := parseHidrawEntry(name)
	if len(infos) == 0 {
		// Disconnect events often race sysfs teardown; fall back to a
		// minimal info carrying only the device node path.
		infos = []backend.DeviceInfo{{ID: devHidrawPathPrefix + name}}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, info := range infos {
		select {
		case h.out <- backend.Event{Kind: kind, Info: info}:
		default:
			xlog.Debug(xlog.ComponentLinux, "dropping hotplug event, subscriber queue full", "action", ev.action, "devpath", ev.devpath)
		}
	}
}

func hidrawNameFromDevpath(devpath string) string {
	if !strings.Contains(devpath, "hidraw") {
		return ""
	}
	return filepath.Base(devpath)
}

// uevent actions recognized from the netlink payload.
type ueventActionKind uint8

const (
	ueventUnknown ueventActionKind = iota
	ueventAdd
	ueventRemove
	ueventChange
	ueventBind
	ueventUnbind
)

type parsedUEvent struct {
	action    ueventActionKind
	devpath   string
	subsystem string
}

const (
	udevMagic       = 0xfeedcafe
	udevHeaderBytes = "libudev\x00"
)

// parseUEvent accepts both the kernel-native uevent format (starts with
// "<action>@<devpath>\x00KEY=VALUE\x00...") and the udev-monitor framing
// (an 8-byte "libudev\0" header, a big-endian magic at offset 8, and a
// native-endian payload offset at offset 16, pointing at the first
// KEY=VALUE pair - the udev frame omits the leading "<action>@<devpath>"
// line that the kernel frame has).
func parseUEvent(data []byte) (parsedUEvent, bool) {
	var evt parsedUEvent

	if len(data) >= 8 && string(data[:8]) == udevHeaderBytes {
		if len(data) < 20 {
			return evt, false
		}
		magic := binary.BigEndian.Uint32(data[8:12])
		if magic != udevMagic {
			return evt, false
		}
		payloadOffset := binary.NativeEndian.Uint32(data[16:20])
		if int(payloadOffset) >= len(data) {
			return evt, false
		}
		parseKeyValues(data[payloadOffset:], &evt)
		return evt, evt.devpath != ""
	}

	idx := bytes.IndexByte(data, 0)
	if idx < 0 || !bytes.ContainsRune(data[:idx], '@') {
		return evt, false
	}
	first := string(data[:idx])
	if action, devpath, ok := strings.Cut(first, "@"); ok {
		evt.action = parseAction(action)
		evt.devpath = devpath
	}
	parseKeyValues(data[idx+1:], &evt)
	return evt, evt.devpath != ""
}

func parseKeyValues(data []byte, evt *parsedUEvent) {
	for _, line := range bytes.Split(data, []byte{0}) {
		if len(line) == 0 {
			continue
		}
		key, value, ok := strings.Cut(string(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "ACTION":
			evt.action = parseAction(value)
		case "DEVPATH":
			evt.devpath = value
		case "SUBSYSTEM":
			evt.subsystem = value
		}
	}
}

func parseAction(s string) ueventActionKind {
	switch s {
	case "add":
		return ueventAdd
	case "remove":
		return ueventRemove
	case "change":
		return ueventChange
	case "bind":
		return ueventBind
	case "unbind":
		return ueventUnbind
	default:
		return ueventUnknown
	}
}
