// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios. For
// example, ErrConflict signals that an optimistic write lost the race
// against a concurrent update and the caller should re-read and retry,
// while ErrNameExists reports a uniqueness violation on creation.
package repository

import "errors"

// ErrConflict is returned when a versioned update or delete matched no row,
// meaning the entity changed (or disappeared) between read and write.
// Services translate this into a retryable conflict for the caller.
var ErrConflict = errors.New("conflict")

// ErrNameExists is returned when creating a program whose name is already
// taken. Program names are unique across the whole platform.
var ErrNameExists = errors.New("name already exists")

// ErrEmailExists is returned when registering a user with an email address
// that is already in use.
var ErrEmailExists = errors.New("email already exists")
