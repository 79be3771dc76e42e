package execstatus

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Unknown, "UNKNOWN"},
		{Running, "RUNNING"},
		{Succeeded, "SUCCEEDED"},
		{Preempted, "PREEMPTED"},
		{TimedOut, "TIMED_OUT"},
		{Aborted, "ABORTED"},
		{Failed, "FAILED"},
		{Status(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{Unknown, false},
		{Running, false},
		{Succeeded, true},
		{Preempted, true},
		{TimedOut, true},
		{Aborted, true},
		{Failed, true},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Status(%v).Terminal() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, Succeeded},
		{"all succeeded", []Status{Succeeded, Succeeded, Succeeded}, Succeeded},
		{"first failure wins", []Status{Succeeded, Aborted, Failed}, Aborted},
		{"timeout before failure", []Status{TimedOut, Aborted}, TimedOut},
		{"single preempted", []Status{Preempted}, Preempted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.statuses); got != tt.want {
				t.Errorf("Aggregate(%v) = %v, want %v", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestWorse(t *testing.T) {
	if !Worse(Failed, Succeeded) {
		t.Error("Worse(Failed, Succeeded) = false, want true")
	}
	if Worse(Succeeded, Failed) {
		t.Error("Worse(Succeeded, Failed) = true, want false")
	}
	if Worse(Aborted, Aborted) {
		t.Error("Worse(Aborted, Aborted) = true, want false")
	}
}
