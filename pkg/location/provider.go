package location

// Provider interface defines the contract for location providers.
// Sample is total: implementations must always return a usable sample
// and fall back to simulated data instead of failing.
type Provider interface {
	Sample() Sample
	Close() error
}
