// Package validator builds declarative field checks for form input.
//
// Each helper returns a Rule pairing a Check with the error reported when
// it fails. Apply runs the rules and aggregates failures into
// ValidationErrors, which implements error:
//
//	err := validator.Apply(
//		validator.MinLen("username", form.Username, 3),
//		validator.MinLen("password", form.Password, 6),
//		validator.Equal("confirmPassword", form.Confirm, form.Password, "passwords do not match"),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		// verrs.Map() renders as {"field": ["message", ...]}
//	}
//
// Rules are plain values with no shared state and are safe for concurrent use.
package validator
