package analysis

import (
	"fmt"
	"strings"

	"github.com/Rrens/health-insights/internal/domain"
)

// Render formats sections as the assistant message body. When modelUsed is
// set, a trailer naming the model is appended.
func Render(s domain.AnalysisSections, modelUsed string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n%s\n\n", domain.HeaderWhatIsGood, s.WhatIsGood)
	fmt.Fprintf(&b, "**%s**\n%s\n\n", domain.HeaderBeAlert, s.BeAlert)
	fmt.Fprintf(&b, "**%s**\n%s", domain.HeaderNeedToCheck, s.NeedToCheck)
	if modelUsed != "" {
		fmt.Fprintf(&b, "\n\n*Analysis generated using %s*", modelUsed)
	}
	return b.String()
}
