package domain

// Container represents a container in the system (Docker, K8s, etc.)
type Container struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Status    string `json:"status"`
	State     string `json:"state"` // running, exited, etc.
	IPAddress string `json:"ip_address,omitempty"`
	HostPort  int    `json:"host_port,omitempty"`
}

// Running reports whether the container is in a state traffic can be routed to.
func (c Container) Running() bool {
	return c.State == "running"
}
