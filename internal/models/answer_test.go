package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAnswerValue_MarshalsToNaturalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value AnswerValue
		want  string
	}{
		{"text", TextAnswer("04:05"), `"04:05"`},
		{"number", NumberAnswer(6.5), `6.5`},
		{"whole number", NumberAnswer(7), `7`},
		{"bool true", BoolAnswer(true), `true`},
		{"bool false", BoolAnswer(false), `false`},
		{"list", ListAnswer([]string{"run", "read"}), `["run","read"]`},
		{"nil list", ListAnswer(nil), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestAnswerValue_UnmarshalRestoresKind(t *testing.T) {
	tests := []struct {
		name string
		data string
		want AnswerValue
	}{
		{"text", `"hello"`, TextAnswer("hello")},
		{"number", `6.5`, NumberAnswer(6.5)},
		{"negative number", `-3`, NumberAnswer(-3)},
		{"bool", `true`, BoolAnswer(true)},
		{"list", `["a","b"]`, ListAnswer([]string{"a", "b"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got AnswerValue
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

func TestAnswerValue_RoundTripInsideMap(t *testing.T) {
	answers := map[string]AnswerValue{
		"wakeTime":    TextAnswer("04:05"),
		"sleepHours":  NumberAnswer(6.5),
		"wakeAt4":     BoolAnswer(true),
		"morningDone": ListAnswer([]string{"run", "journal"}),
	}

	data, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored map[string]AnswerValue
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(restored, answers) {
		t.Errorf("round trip changed answers:\n got %+v\nwant %+v", restored, answers)
	}
}

func TestAnswerValue_UnmarshalEmpty(t *testing.T) {
	var v AnswerValue
	if err := v.UnmarshalJSON(nil); err == nil {
		t.Error("expected an error for empty input")
	}
}
