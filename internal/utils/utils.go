// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDuration форматирует time.Duration в формат HH:MM:SS
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatClock форматирует позицию в секундах в формат M:SS
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ParseClock разбирает позицию в формате M:SS, M:SS.s или в секундах
func ParseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("пустая позиция")
	}

	minutesPart, secondsPart, hasColon := strings.Cut(s, ":")
	if !hasColon {
		seconds, err := strconv.ParseFloat(s, 64)
		if err != nil || seconds < 0 {
			return 0, fmt.Errorf("неверная позиция %q", s)
		}
		return seconds, nil
	}

	minutes, err := strconv.Atoi(minutesPart)
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("неверные минуты в %q", s)
	}
	seconds, err := strconv.ParseFloat(secondsPart, 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("неверные секунды в %q", s)
	}
	return float64(minutes)*60 + seconds, nil
}

// TruncateString обрезает строку до указанной длины в символах, добавляя "..." если строка длиннее
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
