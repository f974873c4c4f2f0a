package domain

import "errors"

var ErrDuplicateUsername = errors.New("username already exists")
var ErrDuplicateEmail = errors.New("email already exists")
var ErrRoleNotFound = errors.New("role not found")
var ErrAuthenticationFailed = errors.New("authentication failed")
var ErrPasswordMismatch = errors.New("password does not match")
var ErrAccountNotFound = errors.New("account not found")
var ErrCannotModifyAdmin = errors.New("cannot change admin account status")
var ErrStatusUnchanged = errors.New("account status already set")
var ErrAccountLocked = errors.New("account temporarily locked")
var ErrNotAuthenticated = errors.New("not authenticated")
