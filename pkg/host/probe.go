package host

import (
	"os"
	"runtime"
	"strings"
)

// EnvVar selects the host kind when the platform cannot tell on its own.
// Accepted values are "browser", "embedded" and "headless".
const EnvVar = "FAULTLINE_HOST"

// Probe reports the capabilities of the host environment.
type Probe interface {
	// Browser reports whether a browser-like host is present.
	Browser() bool

	// Embedded reports whether an embedded alternate-renderer host is present.
	Embedded() bool
}

// Env is a static Probe.
type Env struct {
	InBrowser  bool `json:"browser"`
	InEmbedded bool `json:"embedded"`
}

// Browser implements Probe.
func (e Env) Browser() bool { return e.InBrowser }

// Embedded implements Probe.
func (e Env) Embedded() bool { return e.InEmbedded }

// Headless is the probe for hosts with no diagnostic surface.
var Headless = Env{}

// Detect inspects the platform and EnvVar.
// A js/wasm build is always browser-like.
func Detect() Env {
	return detect(runtime.GOOS, os.Getenv(EnvVar))
}

func detect(goos, value string) Env {
	env := Env{InBrowser: goos == "js"}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "browser":
		env.InBrowser = true
	case "embedded":
		env.InEmbedded = true
	case "headless":
		env = Env{}
	}
	return env
}

// HasChannel reports whether p describes a host with a diagnostic surface.
func HasChannel(p Probe) bool {
	return p != nil && (p.Browser() || p.Embedded())
}
