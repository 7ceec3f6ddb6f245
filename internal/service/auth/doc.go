// Package auth implements credential handling and the token/session state
// machine: issuing and verifying signed access and refresh tokens, hashing
// passwords, and the register, login, refresh and logout flows that keep a
// single live session record per user.
package auth
