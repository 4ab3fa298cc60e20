package models

import "testing"

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		terminal bool
	}{
		{TaskWaiting, false},
		{TaskActing, false},
		{TaskComplete, true},
		{TaskCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := IsTerminal(tt.status); got != tt.terminal {
				t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.terminal)
			}
		})
	}
}

func TestValidateTaskTransition(t *testing.T) {
	valid := []struct {
		from, to TaskStatus
	}{
		{TaskWaiting, TaskActing},
		{TaskWaiting, TaskCancelled},
		{TaskActing, TaskComplete},
		{TaskActing, TaskCancelled},
	}
	for _, tt := range valid {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if err := ValidateTaskTransition(tt.from, tt.to); err != nil {
				t.Errorf("ValidateTaskTransition(%q, %q) = %v, want nil", tt.from, tt.to, err)
			}
		})
	}

	invalid := []struct {
		from, to TaskStatus
	}{
		{TaskWaiting, TaskComplete},
		{TaskActing, TaskWaiting},
		{TaskComplete, TaskActing},
		{TaskComplete, TaskCancelled},
		{TaskCancelled, TaskWaiting},
		{TaskCancelled, TaskComplete},
	}
	for _, tt := range invalid {
		t.Run(string(tt.from)+"_to_"+string(tt.to)+"_rejected", func(t *testing.T) {
			if err := ValidateTaskTransition(tt.from, tt.to); err == nil {
				t.Errorf("ValidateTaskTransition(%q, %q) = nil, want error", tt.from, tt.to)
			}
		})
	}
}

func TestIsValidDoctorState(t *testing.T) {
	for _, s := range []DoctorState{DoctorActing, DoctorWaiting, DoctorOffice, DoctorAway} {
		if !IsValidDoctorState(s) {
			t.Errorf("IsValidDoctorState(%q) = false, want true", s)
		}
	}
	if IsValidDoctorState("lunch") {
		t.Error(`IsValidDoctorState("lunch") = true, want false`)
	}
}
