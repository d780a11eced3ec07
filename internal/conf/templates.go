package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TemplatesConfig maps reply template names to their text, loaded from YAML
// with compiled-in defaults for anything the file leaves out.
type TemplatesConfig struct {
	Templates map[string]string `yaml:"templates"`
}

// Template names recognized by the command layer.
const (
	TemplateCommandHelp           = "command-help"
	TemplateCommandAdd            = "command-add"
	TemplateCommandAddDeferred    = "command-add-deferred"
	TemplateCommandRemove         = "command-remove"
	TemplateCommandRemoveDeferred = "command-remove-deferred"
	TemplateCommandRandom         = "command-random"
	TemplateMentionMembers        = "mention-members"
	TemplateCommandPending        = "command-pending"
	TemplateCommandDefer          = "command-defer"
	TemplateCommandCancel         = "command-cancel"
	TemplateCommandFlush          = "command-flush"
	TemplateUnknownCommand        = "unknown-command"
	TemplateError                 = "error"
)

// DefaultTemplatesConfig returns the compiled-in reply templates.
func DefaultTemplatesConfig() *TemplatesConfig {
	return &TemplatesConfig{
		Templates: map[string]string{
			TemplateCommandHelp: "Here's what you can ask me to do:\n" +
				"{{range .Commands}}- {{.Usage}} — {{.Description}}\n{{end}}",
			TemplateCommandAdd:         "Added to the ring: {{.Members}}. Welcome aboard!",
			TemplateCommandAddDeferred: "Thanks {{.Account}}! I've passed your request along to the admins.",
			TemplateCommandRemove:      "Removed from the ring: {{.Members}}. Come back any time!",
			TemplateCommandRemoveDeferred: "Thanks {{.Account}}! I've passed your removal request along " +
				"to the admins.",
			TemplateCommandRandom: "Say hello to {{.Member}}!",
			TemplateMentionMembers: "Say hello to a few of our members!\n\n" +
				"{{range .Selected}}- @{{.}}\n{{end}}",
			TemplateCommandPending: "{{if .Requests}}Pending requests:\n" +
				"{{range .Requests}}- {{.Request}} (from {{.From}})\n{{end}}" +
				"{{else}}No pending requests.{{end}}",
			TemplateCommandDefer:  "Deferred for later: {{.Request}}",
			TemplateCommandCancel: "Cancelled: {{.Request}}",
			TemplateCommandFlush:  "Cleared out all pending requests.",
			TemplateUnknownCommand: "Sorry, I didn't catch a command in that. " +
				"Mention me with \"help\" to see what I understand.",
			TemplateError: "Sorry, something went wrong handling that command. Please try again later.",
		},
	}
}

// LoadTemplatesConfig loads reply templates from a YAML file, falling back
// to defaults when the path is empty or the file is missing. Names absent
// from the file keep their default text.
func LoadTemplatesConfig(configPath string) (*TemplatesConfig, error) {
	config := DefaultTemplatesConfig()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("[Config] No templates file at %s, using defaults\n", configPath)
			return config, nil
		}
		return nil, fmt.Errorf("read templates config: %w", err)
	}

	var loaded TemplatesConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse templates config: %w", err)
	}

	for name, text := range loaded.Templates {
		if text != "" {
			config.Templates[name] = text
		}
	}

	return config, nil
}
