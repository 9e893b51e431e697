package config

// HostConfig holds per-host overrides from the configuration file,
// letting operators pin scan parameters for targets they probe
// regularly.
type HostConfig struct {
	// Ports overrides the port range ("start-end" form).
	Ports string `yaml:"ports,omitempty"`

	// Modules overrides the module selection.
	Modules []string `yaml:"modules,omitempty"`

	// Timeout overrides the per-request timeout, in seconds.
	Timeout float64 `yaml:"timeout,omitempty"`

	// Preset overrides the pacing preset.
	Preset string `yaml:"preset,omitempty"`

	// TLSPort overrides the ssl module's probe port.
	TLSPort int `yaml:"tlsPort,omitempty"`
}

// File represents the structure of the .sentinelscan configuration
// file.
type File struct {
	// Hosts maps target hosts to their overrides.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults is applied to every host unless overridden per host.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// GetHostConfig returns the configuration for a host, merging the
// host-specific entry over the defaults.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := cf.Defaults

	hc, ok := cf.Hosts[host]
	if !ok {
		return result
	}

	if hc.Ports != "" {
		result.Ports = hc.Ports
	}
	if len(hc.Modules) > 0 {
		result.Modules = hc.Modules
	}
	if hc.Timeout != 0 {
		result.Timeout = hc.Timeout
	}
	if hc.Preset != "" {
		result.Preset = hc.Preset
	}
	if hc.TLSPort != 0 {
		result.TLSPort = hc.TLSPort
	}

	return result
}
