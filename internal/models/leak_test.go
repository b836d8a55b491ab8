package models

import "testing"

func TestCanTransitionStatus(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{StatusNew, StatusInvestigating, true},
		{StatusNew, StatusConfirmed, true},
		{StatusNew, StatusFalsePositive, true},
		{StatusNew, StatusResolved, true},
		{StatusNew, StatusNew, false},
		{StatusInvestigating, StatusConfirmed, true},
		{StatusInvestigating, StatusNew, false},
		{StatusConfirmed, StatusResolved, true},
		{StatusConfirmed, StatusInvestigating, true},
		{StatusConfirmed, StatusFalsePositive, false},
		{StatusFalsePositive, StatusInvestigating, true},
		{StatusFalsePositive, StatusConfirmed, false},
		{StatusResolved, StatusInvestigating, true},
		{StatusResolved, StatusConfirmed, false},
		{"bogus", StatusInvestigating, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			if got := CanTransitionStatus(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransitionStatus(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestSeverityAtLeast(t *testing.T) {
	tests := []struct {
		s    Severity
		min  Severity
		want bool
	}{
		{SeverityCritical, SeverityHigh, true},
		{SeverityHigh, SeverityHigh, true},
		{SeverityMedium, SeverityHigh, false},
		{SeverityInfo, SeverityLow, false},
		{SeverityLow, SeverityInfo, true},
	}
	for _, tt := range tests {
		if got := SeverityAtLeast(tt.s, tt.min); got != tt.want {
			t.Errorf("SeverityAtLeast(%s, %s) = %v, want %v", tt.s, tt.min, got, tt.want)
		}
	}
}

func TestValidSeverity(t *testing.T) {
	for _, s := range []string{"critical", "high", "medium", "low", "info"} {
		if !ValidSeverity(s) {
			t.Errorf("ValidSeverity(%q) = false, want true", s)
		}
	}
	if ValidSeverity("urgent") {
		t.Error(`ValidSeverity("urgent") = true, want false`)
	}
}
