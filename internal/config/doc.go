// Package config loads faultline.json.
//
//	{
//	  "production": false,
//	  "host": {"browser": true},
//	  "devtools": {"addr": "localhost:7070", "overlayPath": "/_faultline/overlay"},
//	  "metrics": {"namespace": "faultline"},
//	  "tracing": {"tracerName": "faultline"},
//	  "archive": {"bucket": "my-app-faults", "prefix": "faults/", "region": "us-east-1"}
//	}
//
// Missing fields take the defaults from New. When neither host.browser nor
// host.embedded is set, the host is detected at runtime (see host.Detect).
package config
