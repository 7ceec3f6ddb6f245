// Package service contains the application use cases for tasks and users.
// It orchestrates domain objects and the repositories defined in
// internal/store, and never depends on a concrete infrastructure package.
//
// Services take the authenticated caller as a domain.Identity and enforce
// ownership themselves, so the API layer only has to map the returned
// sentinel errors to HTTP responses. Authentication flows live in the
// auth subpackage.
package service
