package handler

import (
	"errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// requestValidator wraps a validator with English field-error translations so
// validation failures surface as human-readable messages.
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = entranslations.RegisterDefaultTranslations(validate, trans)

	return &requestValidator{
		validate: validate,
		trans:    trans,
	}
}

// checkStruct validates a request payload. On failure it returns the first
// translated field error.
func (rv *requestValidator) checkStruct(s any) (string, bool) {
	err := rv.validate.Struct(s)
	if err == nil {
		return "", true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Translate(rv.trans), false
	}

	return "invalid request", false
}

// checkVar validates a single value against a tag, e.g. a query parameter.
func (rv *requestValidator) checkVar(value, tag string) bool {
	return rv.validate.Var(value, tag) == nil
}
