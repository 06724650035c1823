// Package notify decides how an inbound message is announced: audio cue,
// system notification when the app is in the background, or in-app toast
// when it is visible.
package notify

import (
	"context"
	"log/slog"
	"swapchat/contract"
	"swapchat/domain/event"
	"swapchat/observability"
	"sync"
)

// Permission mirrors the tri-state of system-notification consent.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

// Sounder plays the short message cue. Failures are swallowed: blocked
// audio must never surface to the user.
type Sounder interface {
	Play() error
}

// SystemNotifier raises an OS-level notification.
type SystemNotifier interface {
	Notify(title, body string) error
}

// Toaster shows an in-app transient toast.
type Toaster interface {
	Toast(title, body string)
}

// Prompter asks the user for system-notification consent.
type Prompter interface {
	Request(ctx context.Context) (granted bool, err error)
}

// Dispatcher consumes inbound-message events for one user and routes them
// to the right announcement channel. Visibility decides between system
// notification and toast; the two branches are mutually exclusive.
type Dispatcher struct {
	log      *slog.Logger
	profiles contract.ProfileStore
	stats    *observability.Stats
	userID   string
	visible  func() bool
	sound    Sounder
	system   SystemNotifier
	toast    Toaster
	prompt   Prompter

	mu            sync.Mutex
	permission    Permission
	autoRequested bool
}

var _ contract.EventSink = (*Dispatcher)(nil)

// NewDispatcher wires the dispatcher for userID. initial is the known
// permission state; when it is PermissionDefault the dispatcher asks the
// prompter once, silently. Any later request must come from an explicit
// user action via RequestPermission.
func NewDispatcher(ctx context.Context, log *slog.Logger, profiles contract.ProfileStore,
	stats *observability.Stats, userID string, visible func() bool,
	sound Sounder, system SystemNotifier, toast Toaster, prompt Prompter,
	initial Permission) *Dispatcher {
	d := &Dispatcher{
		log:        log,
		profiles:   profiles,
		stats:      stats,
		userID:     userID,
		visible:    visible,
		sound:      sound,
		system:     system,
		toast:      toast,
		prompt:     prompt,
		permission: initial,
	}
	if initial == PermissionDefault {
		d.autoRequest(ctx)
	}
	return d
}

func (d *Dispatcher) autoRequest(ctx context.Context) {
	d.mu.Lock()
	if d.autoRequested || d.prompt == nil {
		d.mu.Unlock()
		return
	}
	d.autoRequested = true
	d.mu.Unlock()

	granted, err := d.prompt.Request(ctx)
	if err != nil {
		d.log.Debug("Permission prompt failed", "error", err)
		return
	}
	d.setPermission(granted)
}

// RequestPermission re-asks on explicit user action and surfaces the
// outcome as a toast either way.
func (d *Dispatcher) RequestPermission(ctx context.Context) Permission {
	if d.prompt == nil {
		return d.Permission()
	}
	granted, err := d.prompt.Request(ctx)
	if err != nil {
		d.log.Debug("Permission prompt failed", "error", err)
		return d.Permission()
	}
	d.setPermission(granted)
	if granted {
		d.toast.Toast("Notifications enabled", "You will receive notifications for new messages")
	} else {
		d.toast.Toast("Notifications blocked", "Enable notifications in your system settings to receive alerts")
	}
	return d.Permission()
}

func (d *Dispatcher) setPermission(granted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if granted {
		d.permission = PermissionGranted
	} else {
		d.permission = PermissionDenied
	}
}

func (d *Dispatcher) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// Consume handles one change event. Only inserts addressed to this user
// are announced; everything else passes through untouched.
func (d *Dispatcher) Consume(ctx context.Context, e event.ChangeEvent) error {
	inserted, ok := e.(event.MessageInserted)
	if !ok || inserted.Message.ReceiverID != d.userID {
		return nil
	}

	senderName := d.senderName(ctx, inserted.Message.SenderID)
	title := "New message from " + senderName

	// Always attempt the audio cue; a blocked player is not an error.
	if err := d.sound.Play(); err != nil {
		d.log.Debug("Audio cue failed", "error", err)
	}

	if !d.visible() && d.Permission() == PermissionGranted {
		if err := d.system.Notify(title, inserted.Message.Text); err != nil {
			d.log.Debug("System notification failed", "error", err)
			return nil
		}
	} else if d.visible() {
		d.toast.Toast(title, inserted.Message.Text)
	} else {
		// Hidden without permission: the audio cue was the whole announcement.
		return nil
	}
	if d.stats != nil {
		d.stats.IncrNotificationsShown()
	}
	return nil
}

func (d *Dispatcher) senderName(ctx context.Context, senderID string) string {
	profile, err := d.profiles.Get(ctx, senderID)
	if err != nil {
		d.log.Debug("Sender profile unresolved", "sender", senderID, "error", err)
		return "Someone"
	}
	return profile.DisplayName()
}
