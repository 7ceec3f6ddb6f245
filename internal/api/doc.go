// Package api handles incoming HTTP requests: it decodes and validates
// payloads, calls the task, user and auth services, and writes the
// uniform JSON envelopes produced by the shared subpackage. Error values
// returned by services are classified here into HTTP statuses and stable
// client-facing messages.
package api
