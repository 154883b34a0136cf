package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Rrens/health-insights/internal/domain"
)

// DefaultProfile is the prompt profile used when none is configured
const DefaultProfile = "comprehensive_analyst"

// Profile is a named analyst persona
type Profile struct {
	Name   string
	System string
}

var sectionInstructions = fmt.Sprintf(`Structure your answer in exactly three sections, each introduced by its bold header on its own line:

**%s**
Results within reference ranges and other reassuring findings.

**%s**
Results outside reference ranges that deserve attention, with the likely significance of each.

**%s**
Follow-up tests, lifestyle questions or specialist consultations to discuss with a doctor.

Do not use any other bold headers. Do not give a diagnosis.`,
	domain.HeaderWhatIsGood, domain.HeaderBeAlert, domain.HeaderNeedToCheck)

var profiles = map[string]Profile{
	"comprehensive_analyst": {
		Name: "comprehensive_analyst",
		System: `You are an experienced clinical pathologist reviewing laboratory reports.
Interpret every reported value against its reference range, group related markers
(blood count, metabolic panel, lipids, liver, thyroid) and explain findings in plain language.

` + sectionInstructions,
	},
	"patient_friendly": {
		Name: "patient_friendly",
		System: `You explain laboratory reports to patients with no medical background.
Use short sentences, avoid jargon and keep a calm, factual tone.

` + sectionInstructions,
	},
}

// LookupProfile returns the named profile
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown prompt profile: %s", name)
	}
	return p, nil
}

// ProfileNames lists the known profiles
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPrompt renders the prompt for one analysis request
func BuildPrompt(profile Profile, req Request) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient name: %s\n", req.PatientName)
	fmt.Fprintf(&b, "Age: %d\n", req.Age)
	fmt.Fprintf(&b, "Gender: %s\n\n", req.Gender)
	b.WriteString("Laboratory report:\n")
	b.WriteString(strings.TrimSpace(req.ReportText))
	b.WriteString("\n")

	return Prompt{System: profile.System, User: b.String()}
}
