package models

import (
	"encoding/json"
	"fmt"
)

// AnswerKind tags the variant held by an AnswerValue.
type AnswerKind int

const (
	AnswerText AnswerKind = iota
	AnswerNumber
	AnswerBool
	AnswerList
)

// AnswerValue is a tagged variant for wizard answers: string, number,
// boolean, or list of strings. It serializes to the natural JSON form of
// the held value so answers round-trip exactly between form sessions and
// check-in event meta.
type AnswerValue struct {
	Kind   AnswerKind
	Text   string
	Number float64
	Bool   bool
	List   []string
}

func TextAnswer(s string) AnswerValue      { return AnswerValue{Kind: AnswerText, Text: s} }
func NumberAnswer(n float64) AnswerValue   { return AnswerValue{Kind: AnswerNumber, Number: n} }
func BoolAnswer(b bool) AnswerValue        { return AnswerValue{Kind: AnswerBool, Bool: b} }
func ListAnswer(items []string) AnswerValue {
	return AnswerValue{Kind: AnswerList, List: items}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerNumber:
		return json.Marshal(v.Number)
	case AnswerBool:
		return json.Marshal(v.Bool)
	case AnswerList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	default:
		return json.Marshal(v.Text)
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty answer value")
	}
	switch data[0] {
	case '"':
		v.Kind = AnswerText
		return json.Unmarshal(data, &v.Text)
	case '[':
		v.Kind = AnswerList
		return json.Unmarshal(data, &v.List)
	case 't', 'f':
		v.Kind = AnswerBool
		return json.Unmarshal(data, &v.Bool)
	default:
		v.Kind = AnswerNumber
		return json.Unmarshal(data, &v.Number)
	}
}
