package domain

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// AllInterfaces is the bind address that makes the application reachable
// from outside the container instead of loopback-only.
const AllInterfaces = "0.0.0.0"

// PortLabel is the image label under which the declared port is recorded,
// so the runtime side can publish it without being told again.
const PortLabel = "io.slipway.port"

var (
	ErrNoBaseImage  = errors.New("base image reference is required")
	ErrWorkdir      = errors.New("working directory must be an absolute path")
	ErrManifestPath = errors.New("manifest path must be relative to the working directory")
	ErrPort         = errors.New("port must be between 1 and 65535")
	ErrNoCommand    = errors.New("startup command is required")
	ErrPortMismatch = errors.New("exposed port does not match the startup command port")
	ErrBindAddress  = errors.New("startup command must bind all interfaces")
)

// Recipe describes how an application is packaged into a container image:
// which runtime it is built on, where its files live, which manifest its
// dependencies come from, which port it listens on, and how it is started.
type Recipe struct {
	BaseImage string   `json:"base_image"`
	Workdir   string   `json:"workdir"`
	Manifest  string   `json:"manifest"`
	Port      int      `json:"port"`
	Command   []string `json:"command"`
}

// DefaultRecipe returns the recipe used when a deploy request doesn't carry
// its own: a Streamlit app on a slim Python base.
func DefaultRecipe() Recipe {
	return Recipe{
		BaseImage: "python:3.12-slim",
		Workdir:   "/app",
		Manifest:  "requirements.txt",
		Port:      8505,
		Command: []string{
			"streamlit", "run", "main.py",
			"--server.address=" + AllInterfaces,
			"--server.port=8505",
		},
	}
}

// Validate checks the recipe before any build step runs. Besides the basic
// field checks it enforces the reachability invariant: the declared port
// must equal the port passed to the startup command, and the command must
// bind all interfaces. A mismatch would build fine and then serve nothing
// on the exposed port, so it is rejected here instead.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.BaseImage) == "" {
		return ErrNoBaseImage
	}
	if !path.IsAbs(r.Workdir) {
		return fmt.Errorf("%w: %q", ErrWorkdir, r.Workdir)
	}
	m := path.Clean(r.Manifest)
	if m == "" || m == "." || path.IsAbs(m) || strings.HasPrefix(m, "..") {
		return fmt.Errorf("%w: %q", ErrManifestPath, r.Manifest)
	}
	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrPort, r.Port)
	}
	if len(r.Command) == 0 {
		return ErrNoCommand
	}
	cmdPort := r.CommandPort()
	if cmdPort != r.Port {
		return fmt.Errorf("%w: exposed %d, command %d", ErrPortMismatch, r.Port, cmdPort)
	}
	if r.BindAddress() != AllInterfaces && r.BindAddress() != "::" {
		return fmt.Errorf("%w: got %q", ErrBindAddress, r.BindAddress())
	}
	return nil
}

// CommandPort returns the port passed in the startup argument list, or 0 if
// the command carries no port flag. Both "--flag=value" and "--flag value"
// forms are recognized; the flag name must be "port" or end in ".port".
func (r Recipe) CommandPort() int {
	v := r.flagValue(isPortFlag)
	port, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return port
}

// BindAddress returns the bind address passed in the startup argument list,
// or "" if the command carries no address flag.
func (r Recipe) BindAddress() string {
	return r.flagValue(isAddressFlag)
}

// WithPort returns a copy of the recipe with both the declared port and the
// command's port flag rewritten, keeping the two in agreement.
func (r Recipe) WithPort(port int) Recipe {
	out := r
	out.Port = port
	out.Command = make([]string, len(r.Command))
	copy(out.Command, r.Command)
	for i, arg := range out.Command {
		if name, _, ok := strings.Cut(arg, "="); ok && isPortFlag(flagName(name)) {
			out.Command[i] = name + "=" + strconv.Itoa(port)
			return out
		}
		if isPortFlag(flagName(arg)) && i+1 < len(out.Command) {
			out.Command[i+1] = strconv.Itoa(port)
			return out
		}
	}
	return out
}

func (r Recipe) flagValue(match func(string) bool) string {
	for i, arg := range r.Command {
		if name, value, ok := strings.Cut(arg, "="); ok {
			if match(flagName(name)) {
				return value
			}
			continue
		}
		if match(flagName(arg)) && i+1 < len(r.Command) {
			return r.Command[i+1]
		}
	}
	return ""
}

func flagName(arg string) string {
	if !strings.HasPrefix(arg, "-") {
		return ""
	}
	return strings.TrimLeft(arg, "-")
}

func isPortFlag(name string) bool {
	return name == "port" || name == "p" || strings.HasSuffix(name, ".port")
}

func isAddressFlag(name string) bool {
	return name == "address" || name == "host" ||
		strings.HasSuffix(name, ".address") || strings.HasSuffix(name, ".host")
}
