// Package api handles incoming HTTP requests, request validation and
// response formatting for the task service. It adapts HTTP concerns to the
// dispatcher's operations and keeps wire formats out of the task package.
package api
