// Package upspa implements the client-side cryptographic state machine for
// UpSPA, a threshold password-authenticated single sign-on protocol.
//
// A single end-user password unlocks a long-term authentication state that
// is distributed among N service providers (SPs) such that any t of N
// cooperate to reconstruct a per-password state key. A separate login
// service (LS) holds a password-independent verification tag. The package
// exposes five client-side operations: Setup, Register, Authenticate,
// SecretUpdate and PasswordUpdate.
//
// The package is single-threaded and synchronous: every operation that
// needs randomness takes an explicit io.Reader, and no state is shared
// across calls. SPs and the LS are external collaborators — this package
// never talks to a network, it only produces and consumes the messages
// that would be sent to them.
package upspa
