package handlers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/branchmove/branch-service/internal/branch"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		err = v.RegisterValidation("criterion", func(fl validator.FieldLevel) bool {
			return branch.IsKnown(fl.Field().String())
		})
	})
	return err
}

// validationCode maps the first failed field to a response error code.
func validationCode(err error) (code, message string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return CodeInvalidRequest, err.Error()
	}

	fe := verrs[0]
	switch fe.StructField() {
	case "Region":
		return CodeMissingRegion, "region is required and must be a non-empty string"
	case "CurrentLocation":
		return CodeMissingLocation, "currentLocation is required and must be a non-empty string"
	}

	switch fe.Tag() {
	case "unique":
		return CodeDuplicateCriteria, "priorities must not contain duplicates"
	case "criterion":
		return CodeInvalidCriteria, fmt.Sprintf("unknown criterion %q", fe.Value())
	case "max":
		return CodeInvalidCriteria, fmt.Sprintf("at most %s priorities are allowed", fe.Param())
	}
	return CodeInvalidRequest, fe.Error()
}
