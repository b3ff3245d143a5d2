// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package validation

import (
	"strings"
	"testing"
)

type registrationForm struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Phone string `validate:"required,min=10"`
	Shift int    `validate:"required,oneof=1 2 3"`
	PID   string `validate:"required,numeric"`
}

func validForm() registrationForm {
	return registrationForm{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "0123456789",
		Shift: 2,
		PID:   "12345",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*registrationForm)
		wantErr string // substring of the combined message, "" means valid
	}{
		{"valid", func(*registrationForm) {}, ""},
		{"missing name", func(f *registrationForm) { f.Name = "" }, "Name is required"},
		{"bad email", func(f *registrationForm) { f.Email = "not-an-email" }, "Email must be a valid email address"},
		{"short phone", func(f *registrationForm) { f.Phone = "123" }, "Phone must be at least 10 characters long"},
		{"bad shift", func(f *registrationForm) { f.Shift = 9 }, "Shift must be one of: 1, 2, 3"},
		{"alpha pid", func(f *registrationForm) { f.PID = "abc" }, "PID must contain only numbers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := ValidateStruct(&form)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateStructCollectsAllFields(t *testing.T) {
	form := registrationForm{} // everything missing

	err := ValidateStruct(&form)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(err.Fields()) != 5 {
		t.Errorf("Fields() = %v, want all 5 fields", err.Fields())
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message %q should join failures with semicolons", err.Error())
	}
}
