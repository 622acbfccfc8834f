package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{61*time.Minute + 1*time.Second, "01:01:01"},
		{25*time.Hour + 45*time.Minute + 30*time.Second, "25:45:30"},
	}

	for _, test := range tests {
		result := FormatDuration(test.duration)
		if result != test.expected {
			t.Errorf("FormatDuration(%v) = %s; ожидалось %s", test.duration, result, test.expected)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{9.99, "0:09"},
		{60, "1:00"},
		{125.4, "2:05"},
		{3671, "61:11"},
	}

	for _, test := range tests {
		result := FormatClock(test.seconds)
		if result != test.expected {
			t.Errorf("FormatClock(%v) = %s; ожидалось %s", test.seconds, result, test.expected)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"1:05", 65, true},
		{" 0:30 ", 30, true},
		{"2:05.5", 125.5, true},
		{"42", 42, true},
		{"12.25", 12.25, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1:75", 0, false},
		{"-1:00", 0, false},
		{"1:-5", 0, false},
		{"-4", 0, false},
	}

	for _, test := range tests {
		result, err := ParseClock(test.input)
		if test.ok && err != nil {
			t.Errorf("ParseClock(%q): неожиданная ошибка %v", test.input, err)
			continue
		}
		if !test.ok && err == nil {
			t.Errorf("ParseClock(%q): ожидалась ошибка", test.input)
			continue
		}
		if result != test.expected {
			t.Errorf("ParseClock(%q) = %v; ожидалось %v", test.input, result, test.expected)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a very long string", 10, "this is..."},
		{"abcd", 3, "abc"},
		{"Исполнитель", 6, "Исп..."},
	}

	for _, test := range tests {
		result := TruncateString(test.input, test.maxLen)
		if result != test.expected {
			t.Errorf("TruncateString(%s, %d) = %s; ожидалось %s", test.input, test.maxLen, result, test.expected)
		}
	}
}
