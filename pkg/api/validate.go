package api

import (
	"log/slog"
	"slices"
)

// Validate checks the workflow document for errors and fills in step labels.
// An empty step list is valid and yields a pass-through workflow.
func (d *Document) Validate() error {
	if len(d.Workflows) == 0 {
		return configErrorf("no workflows defined")
	}

	for _, alias := range d.Aliases() {
		if alias == "" {
			return configErrorf("workflow alias must not be empty")
		}
		if err := validateSteps(alias, d.Workflows[alias]); err != nil {
			return err
		}
	}

	for name, svc := range d.Services {
		if svc == nil {
			return configErrorf("service %q has no configuration", name)
		}
	}

	if d.Retry != nil && d.Retry.MaxDelay > 0 && d.Retry.Delay > d.Retry.MaxDelay {
		return configErrorf("retry.delay %s exceeds retry.max_delay %s", d.Retry.Delay, d.Retry.MaxDelay)
	}

	return nil
}

func validateSteps(alias string, steps []StepConfig) error {
	seen := make(map[string]int)
	for i := range steps {
		step := &steps[i]
		if step.Action == "" {
			return configErrorf("workflow %q step %d: action is required", alias, i)
		}
		if step.Name == "" {
			step.Name = step.Action
		}
		if prev, exists := seen[step.Name]; exists {
			slog.Warn("duplicate step name, progress output may be ambiguous",
				"workflow", alias, "step", step.Name, "first", prev, "index", i)
		} else {
			seen[step.Name] = i
		}
	}
	return nil
}

// Aliases returns the workflow aliases in sorted order.
func (d *Document) Aliases() []string {
	aliases := make([]string, 0, len(d.Workflows))
	for alias := range d.Workflows {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	return aliases
}
