package services

// Service defines the lifecycle contract shared by the long-running
// components of the agent.
type Service interface {
	Start() error
	Stop() error
}
