package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/stockinfo/internal/display"
	"github.com/dyike/stockinfo/internal/models"
)

// PromptForQuery asks for the text to search for.
func PromptForQuery() (string, error) {
	var query string
	prompt := &survey.Input{
		Message: "Search for a stock symbol or company:",
		Help:    "Type part of a ticker or a company name, e.g. AAP or Apple",
	}

	err := survey.AskOne(prompt, &query, survey.WithValidator(func(val interface{}) error {
		str, _ := val.(string)
		if strings.TrimSpace(str) == "" {
			return fmt.Errorf("query cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.ToUpper(query), nil
}

// PromptForSuggestion lets the user pick one of items or fall back to the
// typed query. picked is false when the typed query was chosen.
func PromptForSuggestion(query string, items []models.Suggestion) (sel models.Suggestion, picked bool, err error) {
	typed := fmt.Sprintf("Search %q as typed", strings.TrimSpace(query))

	options := make([]string, 0, len(items)+1)
	for _, s := range items {
		options = append(options, display.SuggestionLine(s))
	}
	options = append(options, typed)

	var index int
	prompt := &survey.Select{
		Message:  "Select a symbol:",
		Options:  options,
		Help:     "Pick a suggestion, or the last entry to fetch the text you typed",
		PageSize: 12,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return models.Suggestion{}, false, err
	}

	if index < len(items) {
		return items[index], true, nil
	}
	return models.Suggestion{}, false, nil
}

// PromptForAnotherLookup asks whether to run another lookup.
func PromptForAnotherLookup() (bool, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do next?",
		Options: []string{
			"Look up another stock",
			"Exit",
		},
		Default: "Exit",
	}

	if err := survey.AskOne(prompt, &choice); err != nil {
		return false, err
	}
	return choice == "Look up another stock", nil
}
