package vbox

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCommandRunner is a mock implementation of the CommandRunner interface.
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	callArgs := m.Called(ctx, name, args)
	return callArgs.String(0), callArgs.Error(1)
}

// TestControlClient_GetGuestProperty_ParsesValue verifies the value is
// extracted from the tool's "Value:" marker.
func TestControlClient_GetGuestProperty_ParsesValue(t *testing.T) {
	runner := new(MockCommandRunner)
	runner.On("Run", mock.Anything, ControlTool, []string{"guestproperty", "get", "/VirtualBox/GuestInfo/GPS/Location"}).
		Return("Value: {\"latitude\":1.5}\n", nil)

	c := NewControlClient(runner)
	value, found, err := c.GetGuestProperty(context.Background(), "/VirtualBox/GuestInfo/GPS/Location")

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "{\"latitude\":1.5}", value)
	runner.AssertExpectations(t)
}

// TestControlClient_GetGuestProperty_Absent verifies output without a
// value marker reads as "not set", not an error.
func TestControlClient_GetGuestProperty_Absent(t *testing.T) {
	runner := new(MockCommandRunner)
	runner.On("Run", mock.Anything, ControlTool, mock.Anything).
		Return("No value set!\n", nil)

	c := NewControlClient(runner)
	value, found, err := c.GetGuestProperty(context.Background(), "/VirtualBox/GuestInfo/GPS/Location")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

// TestControlClient_GetGuestProperty_RunnerError verifies runner
// failures pass through with their classification intact.
func TestControlClient_GetGuestProperty_RunnerError(t *testing.T) {
	runner := new(MockCommandRunner)
	runner.On("Run", mock.Anything, ControlTool, mock.Anything).
		Return("", fmt.Errorf("%w: %s", ErrToolNotFound, ControlTool))

	c := NewControlClient(runner)
	_, found, err := c.GetGuestProperty(context.Background(), "/VirtualBox/GuestInfo/GPS/Location")

	assert.False(t, found)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

// TestMemoryStore_SessionRoundTrip verifies the in-memory store
// honors both side contracts.
func TestMemoryStore_SessionRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	session, err := store.AcquireSession()
	assert.NoError(t, err)
	assert.NoError(t, session.Lock())
	assert.NoError(t, session.SetProperty("/VirtualBox/GuestInfo/GPS/Latitude", "37.7749"))
	assert.NoError(t, session.Unlock())

	value, found, err := store.GetGuestProperty(context.Background(), "/VirtualBox/GuestInfo/GPS/Latitude")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "37.7749", value)

	_, found, err = store.GetGuestProperty(context.Background(), "/VirtualBox/GuestInfo/GPS/Longitude")
	assert.NoError(t, err)
	assert.False(t, found)
}
