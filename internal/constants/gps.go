package constants

import "time"

// Guest property keys published for every sample. Location carries the
// full JSON sample; the rest are stringified scalars for tooling that
// cannot parse JSON.
const (
	PropertyKeyLocation  = "/VirtualBox/GuestInfo/GPS/Location"
	PropertyKeyLatitude  = "/VirtualBox/GuestInfo/GPS/Latitude"
	PropertyKeyLongitude = "/VirtualBox/GuestInfo/GPS/Longitude"
	PropertyKeyTimestamp = "/VirtualBox/GuestInfo/GPS/Timestamp"
)

// Service defaults shared by the host and guest binaries.
const (
	DefaultVMName   = "MyVM"
	DefaultInterval = 5 * time.Second
	DefaultHTTPPort = 8089
)

// DisplayValueLimit truncates property values in log output; the full
// value always goes to the transport.
const DisplayValueLimit = 50
