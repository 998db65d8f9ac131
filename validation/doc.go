// Package validation validates configuration, either through struct tags
// (go-playground/validator) or programmatically with a collecting Validator.
package validation
