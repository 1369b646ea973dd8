package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// fieldKey turns a validator namespace such as "SubcategoryRequest.modules[0].questions[1].option_1"
// into "modules.0.questions.1.option_1".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return indexPattern.ReplaceAllString(ns, ".$1")
}

func attribute(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	return strings.ReplaceAll(key, "_", " ")
}

func fieldMessage(fe validator.FieldError, attr string) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attr)
	case "max":
		if isString {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", attr, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("The %s field must be at least %s characters.", attr, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", attr, fe.Param())
	case "len":
		return fmt.Sprintf("The %s field must be %s characters.", attr, fe.Param())
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", attr)
	case "datetime":
		return fmt.Sprintf("The %s field must match the format Y-m-d.", attr)
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", attr, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s field must be at least %s.", attr, fe.Param())
	}
	return fmt.Sprintf("The %s field is invalid.", attr)
}

// bindingErrors converts a binding failure into per-field messages keyed by JSON field name.
func bindingErrors(err error) map[string][]string {
	fields := map[string][]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			key := fieldKey(fe)
			if fe.Tag() == "eqfield" && strings.HasSuffix(key, "_confirmation") {
				// reported against the confirmed field
				key = strings.TrimSuffix(key, "_confirmation")
				fields[key] = append(fields[key], fmt.Sprintf("The %s field confirmation does not match.", attribute(key)))
				continue
			}
			fields[key] = append(fields[key], fieldMessage(fe, attribute(key)))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields[typeErr.Field] = []string{fmt.Sprintf("The %s field has an invalid type.", attribute(typeErr.Field))}
		return fields
	}

	fields["body"] = []string{"The request body is invalid."}
	return fields
}
