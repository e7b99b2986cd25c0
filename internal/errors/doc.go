// Package errors provides coded, actionable errors for the faultline CLI and
// configuration loader.
//
// Every FaultError carries a code from the registry:
//   - F1xx: configuration (faultline.json)
//   - F2xx: runtime wiring (devtools server, archive, host channel)
//   - F3xx: command line usage
//
// Usage:
//
//	err := errors.New("F101").
//	    WithLocation("faultline.json", 4, 17).
//	    WithSuggestion("Remove the trailing comma")
//
//	fmt.Print(err.Format())
package errors
