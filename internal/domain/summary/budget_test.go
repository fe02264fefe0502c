package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaxOutputTokensClampsToMin(t *testing.T) {
	t.Parallel()
	profile := BudgetProfile{
		ChunkFraction: 0.15, FinalFraction: 0.10,
		ChunkMin: 300, ChunkMax: 1000,
		FinalMin: 500, FinalMax: 2000,
	}
	input := strings.Repeat("word ", 50)

	require.Equal(t, 500, maxOutputTokens(input, profile, true))
	require.Equal(t, 300, maxOutputTokens(input, profile, false))
}

func TestMaxOutputTokensClampsToMax(t *testing.T) {
	t.Parallel()
	profile := DefaultProfiles()[StyleConcise]
	input := strings.Repeat("word ", 30000)

	require.Equal(t, profile.FinalMax, maxOutputTokens(input, profile, true))
	require.Equal(t, profile.ChunkMax, maxOutputTokens(input, profile, false))
}

func TestMaxOutputTokensEmptyInputReturnsMin(t *testing.T) {
	t.Parallel()
	for style, profile := range DefaultProfiles() {
		require.Equal(t, profile.FinalMin, maxOutputTokens("", profile, true), "style %s", style)
		require.Equal(t, profile.ChunkMin, maxOutputTokens("", profile, false), "style %s", style)
	}
}

func TestMaxOutputTokensAlwaysWithinBounds(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"",
		"tiny",
		strings.Repeat("medium sized input with words. ", 100),
		strings.Repeat("a very large transcript body. ", 5000),
	}
	for style, profile := range DefaultProfiles() {
		for _, input := range inputs {
			for _, finalPass := range []bool{false, true} {
				got := maxOutputTokens(input, profile, finalPass)
				min, max := profile.ChunkMin, profile.ChunkMax
				if finalPass {
					min, max = profile.FinalMin, profile.FinalMax
				}
				require.GreaterOrEqual(t, got, min, "style %s", style)
				require.LessOrEqual(t, got, max, "style %s", style)
			}
		}
	}
}

func TestBudgetProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile BudgetProfile
		wantErr string
	}{
		{
			name:    "valid",
			profile: DefaultProfiles()[StyleDetailed],
		},
		{
			name:    "zero fraction",
			profile: BudgetProfile{FinalFraction: 0.1, ChunkMin: 1, ChunkMax: 2, FinalMin: 1, FinalMax: 2},
			wantErr: "budget fractions must be positive",
		},
		{
			name:    "chunk min above max",
			profile: BudgetProfile{ChunkFraction: 0.1, FinalFraction: 0.1, ChunkMin: 10, ChunkMax: 5, FinalMin: 1, FinalMax: 2},
			wantErr: "chunk budget min 10 exceeds max 5",
		},
		{
			name:    "final min above max",
			profile: BudgetProfile{ChunkFraction: 0.1, FinalFraction: 0.1, ChunkMin: 1, ChunkMax: 2, FinalMin: 20, FinalMax: 10},
			wantErr: "final budget min 20 exceeds max 10",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.profile.Validate()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseStyles(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		want    []Style
		wantErr bool
	}{
		{name: "defaults to all styles", names: nil, want: Styles()},
		{name: "explicit subset", names: []string{"concise", "key_points"}, want: []Style{StyleConcise, StyleKeyPoints}},
		{name: "trims whitespace", names: []string{" detailed "}, want: []Style{StyleDetailed}},
		{name: "unknown style rejected", names: []string{"haiku"}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStyles(tt.names)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
