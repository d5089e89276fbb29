package forms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "streakbot/internal/errors"
	"streakbot/internal/models"
)

// StepType tags how a step's answer is collected and parsed. A single
// switch over the tag drives both parsing and keyboard rendering.
type StepType string

const (
	StepTime      StepType = "time"
	StepNumber    StepType = "number"
	StepYesNo     StepType = "yesno"
	StepScale     StepType = "scale"
	StepMultiline StepType = "multiline"
	StepText      StepType = "text"
)

// Step is one typed question in a form's fixed sequence.
type Step struct {
	Key    string
	Type   StepType
	Prompt string
	Min    float64 // bounds for number and scale steps
	Max    float64
}

// FormKeyWakeAt4 names the fixed daily-report question sequence.
const FormKeyWakeAt4 = "wakeAt4"

var wakeAt4Steps = []Step{
	{Key: "wakeTime", Type: StepTime, Prompt: "⏰ What time did you get up? (e.g. 04:05)"},
	{Key: "sleepHours", Type: StepNumber, Prompt: "🛏 How many hours of sleep? (e.g. 6.5)", Min: 0, Max: 24},
	{Key: "wakeAt4", Type: StepYesNo, Prompt: "✅ Up at 4:00?"},
	{Key: "energy", Type: StepScale, Prompt: "☕ Energy (1-10)?", Min: 1, Max: 10},
	{Key: "sleepiness", Type: StepScale, Prompt: "😴 Sleepiness (1-10)?", Min: 1, Max: 10},
	{Key: "morningDone", Type: StepMultiline, Prompt: "📌 What did you do this morning?\nWrite a list, one item per line."},
	{Key: "thought", Type: StepText, Prompt: "🧠 Thought of the day? (1-2 sentences)"},
}

// Steps returns the question sequence for a form key.
func Steps(formKey string) []Step {
	switch formKey {
	case FormKeyWakeAt4:
		return wakeAt4Steps
	default:
		return nil
	}
}

var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// parseText parses a free-text answer according to the step type.
func parseText(step Step, raw string) (models.AnswerValue, error) {
	trimmed := strings.TrimSpace(raw)

	switch step.Type {
	case StepTime:
		if !timePattern.MatchString(trimmed) {
			return models.AnswerValue{}, apperrors.Validationf("time must look like HH:MM (e.g. 04:05)")
		}
		return models.TextAnswer(trimmed), nil

	case StepNumber:
		n, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
		if err != nil {
			return models.AnswerValue{}, apperrors.Validationf("need a number (e.g. 6.5)")
		}
		if n < step.Min {
			return models.AnswerValue{}, apperrors.Validationf("minimum is %s", formatNumber(step.Min))
		}
		if n > step.Max {
			return models.AnswerValue{}, apperrors.Validationf("maximum is %s", formatNumber(step.Max))
		}
		return models.NumberAnswer(n), nil

	case StepMultiline:
		var items []string
		for _, line := range strings.Split(trimmed, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				items = append(items, line)
			}
		}
		return models.ListAnswer(items), nil

	default:
		return models.TextAnswer(trimmed), nil
	}
}

// parseChoice parses a button payload value for yes/no and scale steps.
func parseChoice(step Step, raw string) (models.AnswerValue, error) {
	switch step.Type {
	case StepYesNo:
		return models.BoolAnswer(raw == "1"), nil
	case StepScale:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || n < step.Min || n > step.Max {
			return models.AnswerValue{}, apperrors.Validationf("pick a value between %s and %s", formatNumber(step.Min), formatNumber(step.Max))
		}
		return models.NumberAnswer(n), nil
	default:
		return parseText(step, raw)
	}
}

// Button is one inline-keyboard button; Data follows the
// form:<sessionId>:<stepKey>:<value> wire format.
type Button struct {
	Label string
	Data  string
}

// Prompt is a rendered question, optionally with an inline keyboard.
type Prompt struct {
	Text     string
	Keyboard [][]Button
}

func buildPrompt(sessionID string, step Step) *Prompt {
	p := &Prompt{Text: step.Prompt}

	switch step.Type {
	case StepYesNo:
		p.Keyboard = [][]Button{{
			{Label: "✅ Yes", Data: callbackData(sessionID, step.Key, "1")},
			{Label: "❌ No", Data: callbackData(sessionID, step.Key, "0")},
		}}
	case StepScale:
		var row1, row2 []Button
		for i := int(step.Min); i <= int(step.Max); i++ {
			btn := Button{Label: strconv.Itoa(i), Data: callbackData(sessionID, step.Key, strconv.Itoa(i))}
			if i <= 5 {
				row1 = append(row1, btn)
			} else {
				row2 = append(row2, btn)
			}
		}
		p.Keyboard = [][]Button{row1, row2}
	}

	return p
}

func callbackData(sessionID, stepKey, value string) string {
	return fmt.Sprintf("form:%s:%s:%s", sessionID, stepKey, value)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
