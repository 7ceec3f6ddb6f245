// Package store defines the persistence contracts of the task API: user
// credentials, task records and the expiring session records behind token
// revocation. Implementations live under internal/platform (postgres, redis,
// memory); services depend only on these interfaces.
package store
