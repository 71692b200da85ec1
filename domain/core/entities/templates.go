package entities

var (
	VerticalTemplate = TimelineTemplate{
		ID:          "vertical",
		Name:        "Vertical Timeline",
		Description: "Simple vertical flow",
		Icon:        "⬇️",
		Style:       StyleVertical,
	}
	HorizontalTemplate = TimelineTemplate{
		ID:          "horizontal",
		Name:        "Horizontal Timeline",
		Description: "Left to right flow",
		Icon:        "➡️",
		Style:       StyleHorizontal,
	}
	BranchingTemplate = TimelineTemplate{
		ID:          "branching",
		Name:        "Branching Timeline",
		Description: "Tree with diagonal branches",
		Icon:        "🌳",
		Style:       StyleBranching,
	}
)

// TimelineTemplates returns the built-in templates in display order
func TimelineTemplates() []TimelineTemplate {
	return []TimelineTemplate{VerticalTemplate, HorizontalTemplate, BranchingTemplate}
}

// TemplateByID looks up a built-in template
func TemplateByID(id string) (TimelineTemplate, bool) {
	for _, t := range TimelineTemplates() {
		if t.ID == id {
			return t, true
		}
	}
	return TimelineTemplate{}, false
}
