package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"streakbot/internal/constants"
	"streakbot/internal/models"
)

// renderReport lays out the finished daily report. Field order and emoji
// labels are part of the user-facing contract.
func renderReport(day, totalDays int, date time.Time, answers map[string]models.AnswerValue) string {
	dayPart := strconv.Itoa(day)
	if totalDays > 0 {
		dayPart = fmt.Sprintf("%d / %d", day, totalDays)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Day: %s\n", dayPart)
	fmt.Fprintf(&b, "🗓 Date: %s\n\n", date.Format(constants.DateFormat))
	fmt.Fprintf(&b, "⏰ Wake-up: 04:00 / %s\n", answerText(answers, "wakeTime"))
	fmt.Fprintf(&b, "🛏 Sleep: %s hours\n\n", answerNumber(answers, "sleepHours"))
	fmt.Fprintf(&b, "✅ Up at 4:00: %s\n\n", answerCheck(answers, "wakeAt4"))
	b.WriteString("🧠 How it felt:\n")
	fmt.Fprintf(&b, "☕ Energy: %s /10\n", answerNumber(answers, "energy"))
	fmt.Fprintf(&b, "😴 Sleepiness: %s /10\n\n", answerNumber(answers, "sleepiness"))
	b.WriteString("📌 Done this morning:\n")
	fmt.Fprintf(&b, "%s\n\n", answerList(answers, "morningDone"))
	b.WriteString("🧠 Thought of the day:\n")
	b.WriteString(answerText(answers, "thought"))

	return b.String()
}

const missing = "—"

func answerText(answers map[string]models.AnswerValue, key string) string {
	v, ok := answers[key]
	if !ok || v.Kind != models.AnswerText || v.Text == "" {
		return missing
	}
	return v.Text
}

func answerNumber(answers map[string]models.AnswerValue, key string) string {
	v, ok := answers[key]
	if !ok || v.Kind != models.AnswerNumber {
		return missing
	}
	return formatNumber(v.Number)
}

func answerCheck(answers map[string]models.AnswerValue, key string) string {
	v, ok := answers[key]
	if !ok || v.Kind != models.AnswerBool {
		return missing
	}
	if v.Bool {
		return "✔️"
	}
	return "❌"
}

func answerList(answers map[string]models.AnswerValue, key string) string {
	v, ok := answers[key]
	if !ok || v.Kind != models.AnswerList || len(v.List) == 0 {
		return missing
	}
	items := make([]string, len(v.List))
	for i, item := range v.List {
		items[i] = "— " + item
	}
	return strings.Join(items, "\n")
}
