package validation

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fhuszti/videonft-ms-go/internal/uuid"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Tell the validator to use the JSON tag as the “field name”
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// Grab the value of `json:"foo,omitempty"`
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			// fallback to the Go field name or skip
			return fld.Name
		}
		return name
	})

	// validate session ids as their canonical string
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if id, ok := v.Interface().(uuid.UUID); ok {
			return id.String()
		}
		return nil
	}, uuid.UUID{})

	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	_ = validate.RegisterValidation("mp4", isMP4FileName)
	_ = validate.RegisterValidation("videotype", isVideoContentType)
}

// isMP4FileName accepts file names with an .mp4 extension, in any case.
func isMP4FileName(fl validator.FieldLevel) bool {
	return strings.EqualFold(filepath.Ext(fl.Field().String()), ".mp4")
}

// isVideoContentType accepts any video/* media type, parameters included.
func isVideoContentType(fl validator.FieldLevel) bool {
	ct := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return strings.HasPrefix(ct, "video/")
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ErrorsToJson(validationErrs error) (string, error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(validationErrs, &fieldErrs) {
		return "", validationErrs
	}

	errsMap := make(map[string]string)
	for _, fieldErr := range fieldErrs {
		errsMap[fieldErr.Field()] = fieldErr.Tag()
	}

	errsJson, err := json.Marshal(errsMap)
	if err != nil {
		return "", err
	}
	return string(errsJson), nil
}
