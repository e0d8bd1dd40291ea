package vbox

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ControlClient wraps guest-side VBoxControl invocations.
type ControlClient struct {
	runner CommandRunner
}

// NewControlClient creates a ControlClient on top of the given runner.
func NewControlClient(runner CommandRunner) *ControlClient {
	return &ControlClient{runner: runner}
}

// GetGuestProperty reads one guest property from inside the VM. The
// second return is false when the property is not set; the tool's
// output carries the value after a "Value:" marker.
func (c *ControlClient) GetGuestProperty(ctx context.Context, key string) (string, bool, error) {
	out, err := c.runner.Run(ctx, ControlTool, "guestproperty", "get", key)
	if err != nil {
		return "", false, err
	}

	_, after, found := strings.Cut(out, "Value:")
	if !found {
		return "", false, nil
	}
	return strings.TrimSpace(after), true, nil
}

// Version reports the installed Guest Additions version as parsed
// from `VBoxControl --version`.
func (c *ControlClient) Version(ctx context.Context) (*semver.Version, error) {
	out, err := c.runner.Run(ctx, ControlTool, "--version")
	if err != nil {
		return nil, err
	}
	return parseToolVersion(out)
}
