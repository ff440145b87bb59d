package plugins

// Descriptor is one plugin file. JSON and YAML files share the layout:
//
//	id: open-notes
//	name: Notes
//	icon: file-text
//	keywords: [notes, markdown]
//	action:
//	  type: open
//	  path: ~/notes
type Descriptor struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Icon        string   `json:"icon" yaml:"icon"`
	Group       string   `json:"group" yaml:"group"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Action      Action   `json:"action" yaml:"action"`
}

// Action is the serializable subset of command actions.
type Action struct {
	Type    string `json:"type" yaml:"type"` // shell | open | url
	Command string `json:"command" yaml:"command"`
	Path    string `json:"path" yaml:"path"`
	URL     string `json:"url" yaml:"url"`
}
