// Package guidance builds walkthrough prompts and parses the Markdown answers
// they produce.
package guidance

import (
	"fmt"

	"ui-guide-go/internal/model"
)

const (
	defaultContext       = "General UI Guide request"
	defaultUIDescription = "Not provided"
	defaultConstraints   = "None"
)

var verbosityInstructions = map[model.Verbosity]string{
	model.VerbosityConcise:  "Keep it concise. Limit to 5-7 steps.",
	model.VerbosityNormal:   "Use a balanced level of detail with practical tips.",
	model.VerbosityDetailed: "Be detailed with practical tips and edge cases.",
}

const promptTemplate = `You are a UX guidance assistant for University of Ibadan services. Provide a step-by-step walkthrough.

User context: %s
Task: %s
UI description: %s
Constraints: %s
Verbosity: %s

Return the response in Markdown with the following sections:

## Summary
- 2-3 sentences explaining the approach.

## Steps
1. Step title - short, action-oriented.
   Why: short reason.
   Note: optional.
   Warning: optional.

## Next Steps
- 2-4 bullets with follow-up actions.

%s`

// VerbosityInstruction returns the instruction clause for v. Unknown levels
// get the normal clause.
func VerbosityInstruction(v model.Verbosity) string {
	if s, ok := verbosityInstructions[v]; ok {
		return s
	}
	return verbosityInstructions[model.VerbosityNormal]
}

// BuildPrompt renders the walkthrough request for in.
func BuildPrompt(in model.GuideInput) string {
	verbosity := in.Verbosity
	if !verbosity.Valid() {
		verbosity = model.VerbosityNormal
	}
	return fmt.Sprintf(promptTemplate,
		orDefault(in.Context, defaultContext),
		in.Task,
		orDefault(in.UIDescription, defaultUIDescription),
		orDefault(in.Constraints, defaultConstraints),
		verbosity,
		VerbosityInstruction(verbosity),
	)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
