package validator

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/aafiyacare/homecare-api/internal/validation"
)

var (
	emiratesIDRe = regexp.MustCompile(validation.EmiratesIDPattern)
	uaePhoneRe   = regexp.MustCompile(validation.UAEPhonePattern)
)

// RegisterCustomValidators installs domain formats on gin's binding
// engine. Request structs can then use them as binding tags:
//
//	EmiratesID string `binding:"omitempty,emiratesid"`
//	Phone      string `binding:"omitempty,uaephone"`
//
// Patient demographic fields stay permissive at the API boundary;
// format problems there are the rule engine's to report. The strict
// tags guard identifiers we never want malformed at rest.
func RegisterCustomValidators() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}

	if err := engine.RegisterValidation("emiratesid", validEmiratesID); err != nil {
		return fmt.Errorf("failed to register emiratesid: %w", err)
	}
	if err := engine.RegisterValidation("uaephone", validUAEPhone); err != nil {
		return fmt.Errorf("failed to register uaephone: %w", err)
	}
	return nil
}

func validEmiratesID(fl validator.FieldLevel) bool {
	return emiratesIDRe.MatchString(fl.Field().String())
}

func validUAEPhone(fl validator.FieldLevel) bool {
	return uaePhoneRe.MatchString(fl.Field().String())
}
