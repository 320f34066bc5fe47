package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/flicky/homeclick-store/internal/identity"
)

var (
	ErrUnauthenticated = errors.New("please login first")
	ErrNotAuthorized   = errors.New("admin account cannot use the cart")
	ErrNotAdmin        = errors.New("admin only")
)

// ValidationError reports invalid input field by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

func requireCustomer(id identity.Identity) error {
	switch id.Kind {
	case identity.Customer:
		return nil
	case identity.Admin:
		return ErrNotAuthorized
	default:
		return ErrUnauthenticated
	}
}

func requireAdmin(id identity.Identity) error {
	switch id.Kind {
	case identity.Admin:
		return nil
	case identity.Customer:
		return ErrNotAdmin
	default:
		return ErrUnauthenticated
	}
}
