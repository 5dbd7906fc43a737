// Package schema validates agent structured output against a closed set of
// named result shapes, grounded on the teacher's use of
// github.com/go-playground/validator/v10 struct tags in pkg/config.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Name identifies a registered output schema.
type Name string

const (
	IntakeResult Name = "intake_result"
	CreditResult Name = "credit_result"
	IncomeResult Name = "income_result"
	RiskResult   Name = "risk_result"
)

var (
	validate     = validator.New()
	registryOnce sync.Once
	registry     map[Name]func() any
)

func initRegistry() {
	registry = map[Name]func() any{
		IntakeResult: func() any { return &IntakeResultV1{} },
		CreditResult: func() any { return &CreditResultV1{} },
		IncomeResult: func() any { return &IncomeResultV1{} },
		RiskResult:   func() any { return &RiskResultV1{} },
	}
}

// ValidationError carries a field-path + reason diagnostic, formatted for
// the controller's retry prompt.
type ValidationError struct {
	Schema Name
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema %q: %s", e.Schema, strings.Join(e.Issues, "; "))
}

// Validate decodes raw JSON against the named schema, rejecting unknown
// fields (§4.5), then runs struct-tag validation. Returns the decoded value
// (as the concrete schema struct pointer) on success.
func Validate(name Name, raw []byte) (any, error) {
	registryOnce.Do(initRegistry)

	newInstance, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("schema %q is not registered", name)
	}
	target := newInstance()

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, &ValidationError{Schema: name, Issues: []string{fmt.Sprintf("decode: %v", err)}}
	}

	if err := validate.Struct(target); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, &ValidationError{Schema: name, Issues: []string{err.Error()}}
		}
		issues := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
		}
		return nil, &ValidationError{Schema: name, Issues: issues}
	}

	return target, nil
}
