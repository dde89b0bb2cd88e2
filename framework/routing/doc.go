// Package routing binds controller declarations to the transport and runs
// the per-request pipeline.
//
// # Bootstrap
//
// The Binder resolves each controller through the container, reads its route
// table from the metadata registry, and mounts one composed chain per route:
//
//	global middleware → class middleware → method middleware →
//	  class guards → method guards →
//	    parameter binding + pipes →
//	      interceptors → handler →
//	        response (or exception filter)
//
// Request-scope cleanup is deferred around the whole dispatch, so the
// container partition for a request id is gone by the time the response is
// on the wire, on success and on failure alike.
//
// # Failure routing
//
// A binding, pipe or handler error selects exactly one exception filter:
// the route's, else the controller's, else the process-wide one, else the
// built-in default. A rejecting guard is not an error: it writes its own
// response and the pipeline simply stops.
package routing
