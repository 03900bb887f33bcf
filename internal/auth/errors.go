package auth

import "errors"

// ErrUnauthorized covers bad credentials, anonymous callers on guarded
// routes, and principals acting on resources they have no role in.
var ErrUnauthorized = errors.New("unauthorized")

// ErrTokenMalformed means the token could not be parsed at all.
var ErrTokenMalformed = errors.New("malformed token")

// ErrBadSignature means the token parsed but was not signed with our key.
var ErrBadSignature = errors.New("bad token signature")

// ErrTokenExpired means the token's expiry claim has elapsed.
var ErrTokenExpired = errors.New("token expired")
