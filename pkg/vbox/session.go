package vbox

// Session is one locked management session against a VM. The write
// sequence is Lock, SetProperty for each key, Unlock.
type Session interface {
	Lock() error
	SetProperty(key, value string) error
	Unlock() error
}

// SessionManager hands out management sessions against the hypervisor.
// This is the primary guest-property transport; the CLI tool is the
// fallback when no manager is available or a session write fails.
type SessionManager interface {
	AcquireSession() (Session, error)
}

// Capability describes which transports were resolved at process
// start. Transport selection branches on this descriptor instead of
// exception-driven feature detection.
type Capability struct {
	// SessionAvailable is true when a management-session transport was
	// injected. Without it every write goes straight to the CLI tool.
	SessionAvailable bool
}
