package container

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid binding configuration")

	// ErrAlreadyRegistered is wrapped by every *AlreadyRegisteredError.
	ErrAlreadyRegistered = errors.New("binding already registered")
)

// ConfigurationError is returned by Builder.Build when the accumulated
// configuration cannot produce a valid Binding.
type ConfigurationError struct {
	Abstract string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Abstract == "" {
		return fmt.Sprintf("container: %s", e.Reason)
	}
	return fmt.Sprintf("container: [%s] %s", e.Abstract, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// AlreadyRegisteredError is returned by Container.Bind with NoOverride when
// the abstract, or one of the aliases, is already a registered abstract.
type AlreadyRegisteredError struct {
	Identifier string
	Alias      bool
}

func (e *AlreadyRegisteredError) Error() string {
	if e.Alias {
		return fmt.Sprintf("Cannot bind [%s] as an alias, it is already registered", e.Identifier)
	}
	return fmt.Sprintf("Cannot bind [%s], it is already registered", e.Identifier)
}

func (e *AlreadyRegisteredError) Unwrap() error { return ErrAlreadyRegistered }
