package container

import (
	"fmt"
	"strings"
)

// ProviderNotFoundError reports a resolution against an unregistered token.
// Fatal at bootstrap (the controller is skipped) or fatal to the in-flight
// request when it surfaces during lazy resolution mid-dispatch.
type ProviderNotFoundError struct {
	Token string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("container: no provider registered for [%s]", e.Token)
}

// CycleError reports a circular constructor dependency. The container fails
// fast instead of recursing; cycles cannot be broken at runtime.
type CycleError struct {
	// Stack lists the tokens on the resolution path, ending with the token
	// that closed the cycle.
	Stack []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("container: circular dependency: %s", strings.Join(e.Stack, " -> "))
}
