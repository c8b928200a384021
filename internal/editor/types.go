package editor

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Language is a syntax definition for the browser editor widget.
type Language struct {
	ID          string   `yaml:"id" json:"id"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Extensions  []string `yaml:"extensions" json:"extensions"`
	Aliases     []string `yaml:"aliases" json:"aliases"`

	// Tokenizer maps a state name to its ordered rules. "root" is required.
	Tokenizer map[string][]Rule `yaml:"tokenizer" json:"tokenizer"`
	Brackets  [][2]string       `yaml:"brackets" json:"brackets"`
	Options   Options           `yaml:"options" json:"options"`
}

// Summary is the list view of a language.
type Summary struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Extensions  []string `json:"extensions"`
}

// Rule maps a regular expression to one token, or to one token per capture group.
type Rule struct {
	Regex  string   `json:"regex"`
	Tokens []string `json:"tokens"`
}

// UnmarshalYAML accepts "token: keyword" as well as "token: [a, b]".
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Regex string    `yaml:"regex"`
		Token yaml.Node `yaml:"token"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	r.Regex = raw.Regex

	switch raw.Token.Kind {
	case yaml.ScalarNode:
		r.Tokens = []string{raw.Token.Value}
	case yaml.SequenceNode:
		if err := raw.Token.Decode(&r.Tokens); err != nil {
			return err
		}
	default:
		return fmt.Errorf("rule %q: token must be a string or a list", raw.Regex)
	}
	return nil
}

// Options are the editor settings that go with a language.
type Options struct {
	TabSize       int    `yaml:"tab_size" json:"tab_size"`
	FontSize      int    `yaml:"font_size" json:"font_size"`
	WordWrap      string `yaml:"word_wrap" json:"word_wrap"`
	Minimap       bool   `yaml:"minimap" json:"minimap"`
	LineNumbers   string `yaml:"line_numbers" json:"line_numbers"`
	MatchBrackets string `yaml:"match_brackets" json:"match_brackets"`
}
