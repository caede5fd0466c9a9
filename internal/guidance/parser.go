package guidance

import (
	"regexp"
	"strings"

	"ui-guide-go/internal/model"
)

const introSection = "intro"

var (
	headingRe = regexp.MustCompile(`^#{1,3}\s+(.*)$`)
	stepRe    = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^[-*]\s+`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

var stepSectionKeys = []string{"steps", "step by step", "step-by-step"}

// stepField is a labeled line inside a step.
type stepField struct {
	prefix string
	set    func(*model.GuideStep, string)
}

var stepFields = []stepField{
	{"why:", func(s *model.GuideStep, v string) { s.Why = v }},
	{"note:", func(s *model.GuideStep, v string) { s.Note = v }},
	{"warning:", func(s *model.GuideStep, v string) { s.Warning = v }},
}

// ParseAnswer splits markdown into sections and extracts the summary, steps
// and next steps. It accepts any input; unrecognized structure yields empty
// fields and the caller falls back to Raw.
func ParseAnswer(markdown string) model.GuidanceStructure {
	sections := splitSections(markdown)

	summaryLines, ok := sections["summary"]
	if !ok {
		summaryLines = sections[introSection]
	}

	var stepLines []string
	for _, key := range stepSectionKeys {
		if lines, found := sections[key]; found {
			stepLines = lines
			break
		}
	}
	steps := parseSteps(stepLines)

	out := model.GuidanceStructure{
		Summary:   strings.TrimSpace(strings.Join(summaryLines, "\n")),
		Steps:     steps,
		Notes:     []string{},
		Warnings:  []string{},
		NextSteps: []string{},
		Raw:       markdown,
	}
	for _, s := range steps {
		if s.Note != "" {
			out.Notes = append(out.Notes, s.Note)
		}
		if s.Warning != "" {
			out.Warnings = append(out.Warnings, s.Warning)
		}
	}
	for _, line := range sections["next steps"] {
		if t := strings.TrimSpace(line); t != "" {
			out.NextSteps = append(out.NextSteps, t)
		}
	}
	return out
}

// splitSections buckets lines under the most recent heading. A repeated
// heading starts its bucket over.
func splitSections(markdown string) map[string][]string {
	sections := map[string][]string{introSection: nil}
	current := introSection
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if m := headingRe.FindStringSubmatch(line); m != nil {
			current = sectionKey(m[1])
			sections[current] = []string{}
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return sections
}

func sectionKey(heading string) string {
	key := strings.ToLower(heading)
	key = strings.ReplaceAll(key, ":", "")
	key = spaceRe.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// parseSteps runs the step state machine over the lines of a steps section.
func parseSteps(lines []string) []model.GuideStep {
	steps := []model.GuideStep{}
	var current *model.GuideStep
	for _, line := range lines {
		if m := stepRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				steps = append(steps, *current)
			}
			current = &model.GuideStep{Text: strings.TrimSpace(m[1])}
			continue
		}
		if current == nil {
			continue
		}
		trimmed := bulletRe.ReplaceAllString(strings.TrimSpace(line), "")
		for _, f := range stepFields {
			if len(trimmed) >= len(f.prefix) && strings.EqualFold(trimmed[:len(f.prefix)], f.prefix) {
				f.set(current, strings.TrimSpace(trimmed[len(f.prefix):]))
				break
			}
		}
	}
	if current != nil {
		steps = append(steps, *current)
	}
	return steps
}
