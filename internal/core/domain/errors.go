package domain

import "errors"

var ErrValidation = errors.New("validation failed")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnauthorized = errors.New("unauthorized")
var ErrTokenExpired = errors.New("token expired")
var ErrPolicyViolation = errors.New("policy violation")
var ErrApplicationRejected = errors.New("application rejected")
var ErrInvalidTransition = errors.New("invalid status transition")
