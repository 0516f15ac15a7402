package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/rabbit/logger"
)

// Validator checks request structs against their `validate` tags. Field names
// in errors are the json (or form) names the client sent.
type Validator struct {
	validator *validator.Validate
	logger    logger.Logger
}

type customTag struct {
	validate validator.Func
	message  string
}

func New(logger logger.Logger) (*Validator, error) {
	v := &Validator{validator: validator.New(), logger: logger}
	v.validator.RegisterTagNameFunc(requestFieldName)

	for tag, custom := range v.customTags() {
		if err := v.validator.RegisterValidation(tag, custom.validate); err != nil {
			logger.Error("failed to register custom validator function", "tag", tag, "err", err.Error())
			return nil, err
		}
	}

	return v, nil
}

func (v *Validator) customTags() map[string]customTag {
	return map[string]customTag{
		"valid_path":  {validate: v.isDirectory, message: "invalid path"},
		"valid_query": {validate: v.isNonBlank, message: "invalid query"},
	}
}

// Validate returns nil or an error describing the first failed field.
func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	v.logger.Warn("validation failed", "err", err.Error())

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	first := validationErrs[0]
	if custom, ok := v.customTags()[first.Tag()]; ok {
		return errors.New(custom.message)
	}

	switch first.Tag() {
	case "required":
		return fmt.Errorf("missing required field '%s'", first.Field())
	case "min", "max":
		return fmt.Errorf("value or length of field '%s' is not in the expected range", first.Field())
	case "uuid4":
		return fmt.Errorf("field '%s' is not a valid request id", first.Field())
	}

	return err
}

func requestFieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}

	return field.Name
}

// isDirectory accepts an absolute path to an existing directory.
func (v *Validator) isDirectory(fl validator.FieldLevel) bool {
	path := fl.Field().String()

	switch {
	case strings.TrimSpace(path) == "":
		v.logger.Warn("validation path is empty", "path", path)
		return false
	case strings.Contains(path, "\x00"):
		v.logger.Warn("validation path has null byte", "path", path)
		return false
	case !filepath.IsAbs(path):
		v.logger.Warn("validation path is not absolute", "path", path)
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Info("path does not exist", "path", path)
		return false
	}
	if !info.IsDir() {
		v.logger.Info("path is not a directory", "path", path)
		return false
	}

	return true
}

func (v *Validator) isNonBlank(fl validator.FieldLevel) bool {
	if strings.TrimSpace(fl.Field().String()) == "" {
		v.logger.Warn("query is empty", "query", fl.Field().String())
		return false
	}

	return true
}
