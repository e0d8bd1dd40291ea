package vbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Tool names for the two sides of the guest-property store.
const (
	ManageTool  = "VBoxManage"  // Host side
	ControlTool = "VBoxControl" // Guest side, ships with Guest Additions
)

// MinSupportedVersion is the oldest VirtualBox release the guest
// property namespace used here has been verified against.
const MinSupportedVersion = "6.1.0"

// ManageClient wraps host-side VBoxManage invocations.
type ManageClient struct {
	runner CommandRunner
}

// NewManageClient creates a ManageClient on top of the given runner.
func NewManageClient(runner CommandRunner) *ManageClient {
	return &ManageClient{runner: runner}
}

// SetGuestProperty writes one guest property on the named VM.
func (c *ManageClient) SetGuestProperty(ctx context.Context, vmName, key, value string) error {
	_, err := c.runner.Run(ctx, ManageTool, "guestproperty", "set", vmName, key, value)
	return err
}

// Version reports the installed VirtualBox version as parsed from
// `VBoxManage --version`.
func (c *ManageClient) Version(ctx context.Context) (*semver.Version, error) {
	out, err := c.runner.Run(ctx, ManageTool, "--version")
	if err != nil {
		return nil, err
	}
	return parseToolVersion(out)
}

// parseToolVersion extracts the semantic version from the tool's
// version string, which carries a revision suffix such as
// "7.0.14r161095".
func parseToolVersion(out string) (*semver.Version, error) {
	raw := strings.TrimSpace(out)
	if i := strings.IndexAny(raw, "r_"); i > 0 {
		raw = raw[:i]
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("unparseable tool version %q: %w", strings.TrimSpace(out), err)
	}
	return v, nil
}

// CheckVersion compares an installed tool version against the minimum
// supported release. It returns false when the install is older.
func CheckVersion(v *semver.Version) bool {
	min := semver.MustParse(MinSupportedVersion)
	return !v.LessThan(min)
}
