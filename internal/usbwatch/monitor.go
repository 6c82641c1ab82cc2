// Package usbwatch listens for udev netlink events announcing the lightmeter
// USB device.
//
// Watch mode uses it to trigger a run cycle the moment the meter is plugged
// in instead of waiting for the next interval tick.
package usbwatch

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"lightmeterctl/internal/logging"
)

// Monitor watches for the configured USB device appearing.
type Monitor struct {
	vendorID string
	modelID  string
	logger   *slog.Logger
	handler  func(ctx context.Context, device string)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// New creates a monitor for a usb vendor/model pair (4 lowercase hex digits
// each). The handler runs for every add event of a matching device.
func New(vendorID, modelID string, logger *slog.Logger, handler func(ctx context.Context, device string)) *Monitor {
	vendorID = strings.ToLower(strings.TrimSpace(vendorID))
	modelID = strings.ToLower(strings.TrimSpace(modelID))
	if vendorID == "" || modelID == "" {
		return nil
	}
	return &Monitor{
		vendorID: vendorID,
		modelID:  modelID,
		logger:   logging.NewComponentLogger(logger, "usb-monitor"),
		handler:  handler,
	}
}

// Start begins listening for udev netlink events.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "failed to connect to netlink socket; hotplug triggers unavailable", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "cycles run on the interval only"),
		)
		return nil // Non-fatal, interval ticks still drive cycles.
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("usb monitor started",
		logging.String(logging.FieldEventType, "usb_monitor_started"),
		logging.String("vendor_id", m.vendorID),
		logging.String("model_id", m.modelID),
	)
	return nil
}

// Stop shuts down the monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("usb monitor stopped",
		logging.String(logging.FieldEventType, "usb_monitor_stopped"),
	)
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	matcher := m.buildMatcher()

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, matcher)

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			logging.WarnWithContext(m.logger, "usb monitor error", "usb_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "hotplug triggers may be missed"),
			)
		}
	}
}

// buildMatcher selects add events for the configured usb device.
func (m *Monitor) buildMatcher() netlink.Matcher {
	action := "add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":    "usb",
			"ID_VENDOR_ID": m.vendorID,
			"ID_MODEL_ID":  m.modelID,
		},
	})
	return rules
}

func (m *Monitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	device := uevent.Env["DEVNAME"]
	if device == "" {
		device = uevent.KObj
	}

	m.logger.Info("lightmeter device detected",
		logging.String(logging.FieldEventType, "usb_device_detected"),
		logging.String("device", device),
		logging.String("action", string(uevent.Action)),
	)

	if m.handler != nil {
		m.handler(ctx, device)
	}
}
