// Package http implements the HTTP transport layer of the desktop agent.
// It provides middleware, route handlers, the generic remote proxy mount,
// and static bundle serving. Authentication, logging and tracing concerns
// are all handled at this layer before requests reach the service layer.
package http
