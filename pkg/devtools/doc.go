// Package devtools serves the browser-side diagnostic surface: a WebSocket
// error overlay that acts as a host.Channel, Prometheus metrics and a JSON
// view of recent reports.
//
//	overlay := devtools.NewOverlay(recorder)
//	router := fault.New(tree,
//	    fault.WithProbe(host.Env{InBrowser: true}),
//	    fault.WithChannel(host.Multi{overlay, recorder}),
//	)
//
//	srv := devtools.NewServer(devtools.Config{Addr: ":7070"}, overlay, recorder, registry)
//	go srv.ListenAndServe()
package devtools
