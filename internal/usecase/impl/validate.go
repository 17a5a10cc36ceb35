// Package impl contains the application-specific business rules implementations.
package impl

import (
	"github.com/go-playground/validator/v10"

	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
)

//nolint:gochecknoglobals
var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput validates a gateway input struct and folds violations into the
// validation error taxonomy.
func checkInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
