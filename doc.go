// Package authcore is a credential and account-security engine: password
// hashing and verification, login-attempt tracking with a time-boxed
// lockout, one-time passcodes for email verification and password reset,
// registration with strength scoring, and the resulting session lifecycle.
//
// The host application owns user records behind the CredentialStore
// interface; the engine keeps its own short-lived state (attempt counters,
// OTP records) in Redis. Build one with the fluent builder:
//
//	engine, err := authcore.New().
//		WithRedis(client).
//		WithCredentials(store).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	sess, err := engine.Authenticate(ctx, "alice", password)
//
// All expected outcomes are returned as error values from the taxonomy in
// errors.go; only backend I/O faults surface as ErrStorageUnavailable.
package authcore
