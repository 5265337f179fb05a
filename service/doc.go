// Package service is the client-facing API: it talks to a real database
// backend over HTTP when one is reachable and falls back to the in-memory
// demo engine when it is not.
//
// The backend is probed once with GET /health. A backend that stops
// answering mid-session moves the service into demo mode for good.
package service
