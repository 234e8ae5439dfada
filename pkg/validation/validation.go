// Package validation validates session documents with
// go-playground/validator before they are persisted or loaded.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pyiron/nodeflow/internal/core/document"
)

// Validate is the shared validator instance with the custom tags used by
// the document model registered.
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	must(Validate.RegisterValidation("port_type", validatePortType))
	must(Validate.RegisterValidation("algorithm_mode", validateAlgorithmMode))

	// Report field names from JSON tags so errors match the wire format.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidationError describes one failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors aggregates all failures of one document.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateSessionDoc checks a session document against its struct tags plus
// cross-field rules the tags cannot express: global IDs must be unique and
// every connection endpoint must reference an existing node.
func ValidateSessionDoc(doc *document.SessionDoc) error {
	if doc == nil {
		return document.ErrNilDocument
	}
	if err := Validate.Struct(doc); err != nil {
		return formatValidationErrors(err)
	}
	var errs ValidationErrors
	for _, sd := range doc.Scripts {
		errs = append(errs, checkFlowReferences(sd.Title, sd.Flow)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkFlowReferences(script string, fd document.FlowDoc) ValidationErrors {
	var errs ValidationErrors
	gids := make(map[string]bool, len(fd.Nodes))
	for _, nd := range fd.Nodes {
		if gids[nd.GlobalID] {
			errs = append(errs, ValidationError{
				Field:   script + ".nodes",
				Value:   nd.GlobalID,
				Message: "duplicate node global ID",
			})
		}
		gids[nd.GlobalID] = true
	}
	for i, cd := range fd.Connections {
		for _, gid := range []string{cd.ParentGID, cd.TargetGID} {
			if !gids[gid] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.connections[%d]", script, i),
					Value:   gid,
					Message: "connection references unknown node",
				})
			}
		}
	}
	return errs
}

func formatValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			errs = append(errs, ValidationError{
				Field:   fe.Namespace(),
				Value:   fe.Value(),
				Message: fmt.Sprintf("failed '%s' validation", fe.Tag()),
			})
		}
		return errs
	}
	return ValidationErrors{{Message: err.Error()}}
}

func validatePortType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "data", "exec":
		return true
	}
	return false
}

func validateAlgorithmMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "data", "exec":
		return true
	}
	return false
}
