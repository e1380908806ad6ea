package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/packsmith/internal/adapters/detector"
	"go.trai.ch/packsmith/internal/core/domain"
)

func TestDetectEnvironment_CI(t *testing.T) {
	tests := []struct {
		ciValue string
		want    bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("CI="+tt.ciValue, func(t *testing.T) {
			t.Setenv("CI", tt.ciValue)
			assert.Equal(t, tt.want, detector.DetectEnvironment().IsCI)
		})
	}
}

func TestResolveFormat(t *testing.T) {
	terminal := detector.Environment{IsTTY: true}
	ci := detector.Environment{IsTTY: true, IsCI: true}
	pipe := detector.Environment{}

	tests := []struct {
		name       string
		env        detector.Environment
		configured domain.LogFormat
		want       domain.LogFormat
	}{
		{"auto on terminal", terminal, domain.LogFormatAuto, domain.LogFormatPretty},
		{"auto in ci", ci, domain.LogFormatAuto, domain.LogFormatJSON},
		{"auto on pipe", pipe, domain.LogFormatAuto, domain.LogFormatJSON},
		{"empty means auto", terminal, "", domain.LogFormatPretty},
		{"pretty forced", pipe, domain.LogFormatPretty, domain.LogFormatPretty},
		{"json forced", terminal, domain.LogFormatJSON, domain.LogFormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveFormat(tt.env, tt.configured))
		})
	}
}
