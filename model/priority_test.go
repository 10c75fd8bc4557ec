package model

import "testing"

// TestParsePriority tests semantic priority parsing
func TestParsePriority(t *testing.T) {
	// 列挙値は全てパースできること
	for _, valid := range []string{"low", "medium", "high"} {
		priority, err := ParsePriority(valid)
		if err != nil {
			t.Errorf("ParsePriority(%q): unexpected error: %v", valid, err)
		}
		if string(priority) != valid {
			t.Errorf("ParsePriority(%q): expected %s, got %s", valid, valid, priority)
		}
	}

	// 列挙値以外は拒否されること（大文字や類義語も不可）
	for _, invalid := range []string{"", "urgent", "High", "LOW", "critical", "2"} {
		_, err := ParsePriority(invalid)
		if err == nil {
			t.Errorf("ParsePriority(%q): expected error but got nil", invalid)
		}
	}
}

// TestPriorityOrdinal tests conversion from semantic priority to stored ordinal
func TestPriorityOrdinal(t *testing.T) {
	tests := []struct {
		priority Priority
		expected int
	}{
		{PriorityHigh, 3},
		{PriorityMedium, 2},
		{PriorityLow, 1},
	}

	for _, tt := range tests {
		if got := tt.priority.Ordinal(); got != tt.expected {
			t.Errorf("Priority(%s).Ordinal(): expected %d, got %d", tt.priority, tt.expected, got)
		}
	}
}

// TestIsValidOrdinal tests the stored ordinal range check
func TestIsValidOrdinal(t *testing.T) {
	for _, valid := range []int{1, 2, 3} {
		if !IsValidOrdinal(valid) {
			t.Errorf("IsValidOrdinal(%d): expected true, got false", valid)
		}
	}
	for _, invalid := range []int{0, 4, -1, 100} {
		if IsValidOrdinal(invalid) {
			t.Errorf("IsValidOrdinal(%d): expected false, got true", invalid)
		}
	}
}

// TestPriorityLabel tests conversion from stored ordinal to display label
func TestPriorityLabel(t *testing.T) {
	tests := []struct {
		ordinal  int
		expected string
	}{
		{3, "High"},
		{2, "Medium"},
		{1, "Low"},
		// 範囲外の値は表示側でフォールバックすること
		{5, "High"},
		{0, "Low"},
		{-1, "Low"},
	}

	for _, tt := range tests {
		if got := PriorityLabel(tt.ordinal); got != tt.expected {
			t.Errorf("PriorityLabel(%d): expected %s, got %s", tt.ordinal, tt.expected, got)
		}
	}
}
