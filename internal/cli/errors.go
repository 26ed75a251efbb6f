package cli

import (
	"errors"

	"grocerify/internal/auth"
	"grocerify/repository"
)

// Message turns an error from Run into the one-line text shown to the user.
func Message(err error) string {
	var ve *repository.ValidationError
	var fe *repository.InvalidFormatError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		if ve.Reason == "required" {
			return "Please fill all fields (" + ve.Field + " is empty)."
		}
		return "Invalid " + ve.Field + ": " + ve.Reason + "."
	case errors.As(err, &fe):
		return "Invalid price or quantity format! (" + fe.Error() + ")"
	case errors.Is(err, repository.ErrDuplicateItem):
		return "Item ID already exists!"
	case errors.Is(err, repository.ErrDuplicateUsername):
		return "Username already exists."
	case errors.Is(err, repository.ErrDuplicateEmail):
		return "Email already registered."
	case errors.Is(err, repository.ErrImmutableKey):
		return "You cannot edit the item ID!"
	case errors.Is(err, repository.ErrNotFound):
		return "Item not found."
	case errors.Is(err, ErrBadCredentials):
		return "Invalid username or password."
	case errors.Is(err, auth.ErrPermissionDenied):
		return "Only admins can change the inventory."
	}
	return err.Error()
}
