package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rrens/health-insights/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.AnalysisSections
		missing []string
	}{
		{
			name:  "all sections",
			input: "**What is good**\nCholesterol in range.\nHDL normal.\n\n**Be Alert!**\nVitamin D low.\n\n**Need to check!**\nRepeat CBC in 3 months.",
			want: domain.AnalysisSections{
				WhatIsGood:  "Cholesterol in range.\nHDL normal.",
				BeAlert:     "Vitamin D low.",
				NeedToCheck: "Repeat CBC in 3 months.",
			},
		},
		{
			name:    "missing need to check",
			input:   "**What is good**\nHDL normal\n\n**Be Alert!**\nLow platelets",
			want:    domain.AnalysisSections{WhatIsGood: "HDL normal", BeAlert: "Low platelets"},
			missing: []string{domain.HeaderNeedToCheck},
		},
		{
			name:  "case insensitive headers",
			input: "**WHAT IS GOOD**\nfine\n**be alert!**\nwatch\n**NEED TO CHECK!**\nretest",
			want:  domain.AnalysisSections{WhatIsGood: "fine", BeAlert: "watch", NeedToCheck: "retest"},
		},
		{
			name:  "out of order",
			input: "**Need to check!**\nretest\n\n**What is good**\nfine",
			want:  domain.AnalysisSections{WhatIsGood: "fine", NeedToCheck: "retest"},
			missing: []string{
				domain.HeaderBeAlert,
			},
		},
		{
			name:    "no headers",
			input:   "The model returned prose only.",
			missing: []string{domain.HeaderWhatIsGood, domain.HeaderBeAlert, domain.HeaderNeedToCheck},
		},
		{
			name:    "empty",
			input:   "",
			missing: []string{domain.HeaderWhatIsGood, domain.HeaderBeAlert, domain.HeaderNeedToCheck},
		},
		{
			name:  "inline bold stays in section",
			input: "**What is good**\nYour **HDL** is normal.\n**Be Alert!**\nnone\n**Need to check!**\nnone",
			want:  domain.AnalysisSections{WhatIsGood: "Your **HDL** is normal.", BeAlert: "none", NeedToCheck: "none"},
		},
		{
			name:  "header with empty body",
			input: "**What is good**\n\n**Be Alert!**\nLow iron\n**Need to check!**\nFerritin",
			want:  domain.AnalysisSections{BeAlert: "Low iron", NeedToCheck: "Ferritin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			assert.Equal(t, tt.want, got.Sections)
			assert.Equal(t, tt.missing, got.Missing)
			assert.Equal(t, len(tt.missing) == 0, got.Complete())
		})
	}
}

func TestParse_Independent(t *testing.T) {
	first := Parse("**What is good**\nA\n**Be Alert!**\nB\n**Need to check!**\nC")
	second := Parse("**Be Alert!**\nonly this")

	assert.Equal(t, "A", first.Sections.WhatIsGood)
	assert.Empty(t, second.Sections.WhatIsGood)
	assert.Equal(t, "only this", second.Sections.BeAlert)
}

func TestRender(t *testing.T) {
	s := domain.AnalysisSections{WhatIsGood: "HDL normal", BeAlert: "Low platelets"}

	assert.Equal(t,
		"**What is good**\nHDL normal\n\n**Be Alert!**\nLow platelets\n\n**Need to check!**\n",
		Render(s, ""))

	rendered := Render(s, "gemini/gemini-1.5-flash")
	assert.Contains(t, rendered, "\n\n*Analysis generated using gemini/gemini-1.5-flash*")

	// the trailer never leaks into the parsed sections
	assert.Equal(t, s, Parse(Render(s, "")).Sections)

	// an empty section survives the round trip without swallowing its neighbour
	empty := domain.AnalysisSections{BeAlert: "Low platelets", NeedToCheck: "Repeat CBC"}
	got := Parse(Render(empty, ""))
	assert.Equal(t, empty, got.Sections)
	assert.True(t, got.Complete())
}
