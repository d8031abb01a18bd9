package permkit

import "errors"

var (
	// ErrDuplicateName is returned when registering a permission under a name
	// already bound to a different instance.
	ErrDuplicateName = errors.New("permission name already registered")
	// ErrNilPermission is returned when a nil permission is registered or unregistered.
	ErrNilPermission = errors.New("nil permission")
	// ErrEmptyName is returned when a permission is constructed with an empty name.
	ErrEmptyName = errors.New("permission name cannot be empty")
	// ErrUnknownReference is returned by strict mask computation when a
	// reference does not resolve to a registered permission.
	ErrUnknownReference = errors.New("unknown permission reference")
	// ErrInvalidDefinition is returned when a declarative definition set fails validation.
	ErrInvalidDefinition = errors.New("invalid permission definition")
	// ErrCacheUnavailable wraps Redis failures from the mask cache.
	ErrCacheUnavailable = errors.New("mask cache unavailable")
	// ErrEngineNotReady is returned when an Engine method is called before Build.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrBuilderReused is returned when Build is called twice on the same Builder.
	ErrBuilderReused = errors.New("builder already built")
)
