// Jadual - University Timetable Upstream Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jadual

package validation

import (
	"strings"
	"sync"
	"testing"
)

type testSlot struct {
	Session    string `validate:"required,academic_session"`
	Semester   int    `validate:"min=1,max=3"`
	CourseCode string `validate:"required,max=8"`
	Day        int    `validate:"min=1,max=7"`
}

func TestGetValidator_Singleton(t *testing.T) {
	var wg sync.WaitGroup
	results := make(chan interface{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- GetValidator()
		}()
	}
	wg.Wait()
	close(results)

	first := GetValidator()
	for v := range results {
		if v != first {
			t.Fatal("GetValidator returned different instances")
		}
	}
}

func TestIsAcademicSession(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2019/2020", true},
		{"2006/2007", true},
		{"2019/2021", false},
		{"2020/2019", false},
		{"2019-2020", false},
		{"19/20", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsAcademicSession(tt.input); got != tt.want {
				t.Errorf("IsAcademicSession(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      testSlot
		wantFields []string
		wantMsg    string
	}{
		{
			name:  "valid",
			input: testSlot{Session: "2023/2024", Semester: 1, CourseCode: "SECJ3104", Day: 2},
		},
		{
			name:       "bad session",
			input:      testSlot{Session: "2023", Semester: 1, CourseCode: "SECJ3104", Day: 2},
			wantFields: []string{"Session"},
			wantMsg:    "Session must be an academic session like 2019/2020",
		},
		{
			name:       "day out of range",
			input:      testSlot{Session: "2023/2024", Semester: 1, CourseCode: "SECJ3104", Day: 8},
			wantFields: []string{"Day"},
			wantMsg:    "Day must be at most 7",
		},
		{
			name:       "long code and missing semester",
			input:      testSlot{Session: "2023/2024", Semester: 0, CourseCode: "SECJ31040", Day: 1},
			wantFields: []string{"Semester", "CourseCode"},
			wantMsg:    "CourseCode must be at most 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			got := err.Fields()
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("fields = %v, want %v", got, tt.wantFields)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
