// Package server hosts the read-only Fiber catalog service: the middleware
// chain (panic recovery, request IDs), the datadir Library that maps URL
// indexes to configured song directories, and the fallback handler for
// paths outside the /-/ diagnostics namespace. Route groups live in the
// routes subpackage and receive the Library explicitly.
package server
