package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/localdiscovery/errors"
)

type listenerConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Mode string `mapstructure:"mode" validate:"oneof=local consul"`
}

func TestStructValidateValid(t *testing.T) {
	cfg := listenerConfig{Host: "localhost", Port: 8080, Mode: "local"}
	if err := Validate(&cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	cfg := listenerConfig{Port: 70000, Mode: "zookeeper"}
	err := Validate(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	for _, field := range []string{"host: is required", "port: must be <= 65535", "mode: must be one of"} {
		if !strings.Contains(appErr.Message, field) {
			t.Errorf("expected %q in %q", field, appErr.Message)
		}
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(fields))
	}
}

func TestValidatorRange(t *testing.T) {
	tests := []struct {
		name  string
		value int
		ok    bool
	}{
		{"zero", 0, true},
		{"max", 65535, true},
		{"negative", -1, false},
		{"too big", 65536, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().Range("port", tc.value, 0, 65535)
			if v.HasErrors() == tc.ok {
				t.Errorf("Range(%d): expected ok=%v, errors=%v", tc.value, tc.ok, v.Errors())
			}
		})
	}
}

func TestValidatorChaining(t *testing.T) {
	err := New().
		Required("name", "").
		OneOf("provider", "etcd", "local", "consul").
		Check(false, "addr", "is malformed").
		Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"name: is required", "provider: must be one of", "addr: is malformed"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestValidatorNoErrors(t *testing.T) {
	if err := New().Required("name", "x").OneOf("p", "local", "local").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
