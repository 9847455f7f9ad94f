package models

import "testing"

func TestWorkflowTypeIsValid(t *testing.T) {
	for _, tc := range []struct {
		workflow WorkflowType
		want     bool
	}{
		{WorkflowASGS, true},
		{WorkflowECFlow, true},
		{WorkflowHECRAS, true},
		{WorkflowType("asgs"), false},
		{WorkflowType(""), false},
		{WorkflowType("BOGUS"), false},
	} {
		if got := tc.workflow.IsValid(); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.workflow, got, tc.want)
		}
	}
}

func TestIsValidImageVersion(t *testing.T) {
	for _, tc := range []struct {
		version string
		want    bool
	}{
		{"v1.0.0", true},
		{"v12.34.567", true},
		{"1.0.0", false},
		{"v1.0", false},
		{"v1.0.0.0", false},
		{"v1.0.0-rc1", false},
		{"", false},
	} {
		if got := IsValidImageVersion(tc.version); got != tc.want {
			t.Errorf("IsValidImageVersion(%q) = %v, want %v", tc.version, got, tc.want)
		}
	}
}
