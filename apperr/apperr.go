// Package apperr defines the failure kinds domain services return.
// Handlers match them with errors.Is and translate to HTTP statuses;
// services wrap them with fmt.Errorf("...: %w", ...) to attach context.
package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound signals the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized signals the caller lacks rights for this target.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict signals a duplicate or uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrRuleViolation signals a domain rule breach (self-action,
	// blocking a friend, inviting a non-friend, removing the owner).
	ErrRuleViolation = errors.New("rule violation")
	// ErrExpired signals the entity's TTL passed before the access.
	ErrExpired = errors.New("expired")
)

// IsUniqueViolation detects duplicate-key errors from common database
// drivers. Concurrent duplicate writes are resolved by the store's
// unique indexes; this converts the loser's driver error into a
// recognizable kind.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
