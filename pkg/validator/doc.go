// Package validator provides composable validation rules.
//
//	err := validator.Apply(
//		validator.ValidEmail("email", in.Email),
//		validator.Required("name", in.Name),
//		validator.StrongPassword("password", in.Password, validator.DefaultPasswordStrength()),
//	)
//
// Apply evaluates every rule and returns ValidationErrors listing all
// failures, each with a translation key for clients that localize messages.
package validator
