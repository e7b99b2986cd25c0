package errors

import "sort"

// Template defines a registered error.
type Template struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://faultline.dev/docs/errors/"

var registry = map[string]Template{
	// Configuration (F1xx)
	"F100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No faultline.json was found in the current directory or any parent. Run 'faultline config init' to create one.",
		DocURL:   docBase + "F100",
	},
	"F101": {
		Category: CategoryConfig,
		Message:  "Invalid config syntax",
		Detail:   "faultline.json is not valid JSON.",
		DocURL:   docBase + "F101",
	},
	"F102": {
		Category: CategoryConfig,
		Message:  "Invalid devtools address",
		Detail:   "devtools.addr must be a host:port pair such as localhost:7070.",
		DocURL:   docBase + "F102",
	},
	"F103": {
		Category: CategoryConfig,
		Message:  "Invalid overlay path",
		Detail:   "devtools.overlayPath must be an absolute URL path starting with '/'.",
		DocURL:   docBase + "F103",
	},
	"F104": {
		Category: CategoryConfig,
		Message:  "Invalid archive settings",
		Detail:   "archive.flushInterval must parse as a duration and archive.maxBatch must be positive when archive.bucket is set.",
		DocURL:   docBase + "F104",
	},
	"F105": {
		Category: CategoryConfig,
		Message:  "Conflicting host settings",
		Detail:   "host.browser and host.embedded cannot both be true.",
		DocURL:   docBase + "F105",
	},
	"F106": {
		Category: CategoryConfig,
		Message:  "Invalid metric name",
		Detail:   "metrics.namespace and metrics.subsystem may contain only letters, digits and underscores.",
		DocURL:   docBase + "F106",
	},

	// Runtime wiring (F2xx)
	"F200": {
		Category: CategoryRuntime,
		Message:  "Devtools server failed",
		Detail:   "The devtools HTTP server could not listen on the configured address.",
		DocURL:   docBase + "F200",
	},
	"F201": {
		Category: CategoryRuntime,
		Message:  "Archive upload failed",
		Detail:   "Buffered error reports could not be written to the archive bucket.",
		DocURL:   docBase + "F201",
	},
	"F202": {
		Category: CategoryRuntime,
		Message:  "Unhandled error reached the host",
		Detail:   "An error was not suppressed by any capture hook, the global handler, or a diagnostic channel, and was re-raised.",
		DocURL:   docBase + "F202",
	},
	"F203": {
		Category: CategoryRuntime,
		Message:  "Archive setup failed",
		Detail:   "The archive settings are incomplete or AWS credentials could not be loaded.",
		DocURL:   docBase + "F203",
	},

	// CLI (F3xx)
	"F300": {
		Category: CategoryCLI,
		Message:  "Config file already exists",
		Detail:   "Use --force to overwrite the existing faultline.json.",
		DocURL:   docBase + "F300",
	},
	"F301": {
		Category: CategoryCLI,
		Message:  "Unknown demo scenario",
		Detail:   "Run 'faultline demo --help' for the list of scenarios.",
		DocURL:   docBase + "F301",
	},
	"F302": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command returned an error that has no dedicated code.",
		DocURL:   docBase + "F302",
	},
	"F303": {
		Category: CategoryCLI,
		Message:  "Unknown error code",
		Detail:   "Run 'faultline explain' for the list of registered codes.",
		DocURL:   docBase + "F303",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
