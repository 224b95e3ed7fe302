// Package validation installs custom binding validators on gin's validator
// engine.
package validation

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register adds the custom validators used by the request models. Must be
// called once at startup, before the router starts serving.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("future", future)
}

// future accepts only timestamps after now. Used on booking start times so
// nobody schedules into the past.
func future(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(time.Now())
}
