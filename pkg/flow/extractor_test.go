package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeyValues(t *testing.T) {
	msg := "Hi there\nos: Windows 11\nerror_message = 809\n  Vpn_Client :  AnyConnect  \nx: too short key\nnot a field line\n: empty"

	got := ExtractKeyValues(msg)

	assert.Equal(t, []KeyValue{
		{Key: "os", Value: "Windows 11"},
		{Key: "error_message", Value: "809"},
		{Key: "vpn_client", Value: "AnyConnect"},
	}, got)
}

func TestExtractKeyValuesLaterLineWins(t *testing.T) {
	got := ExtractKeyValues("os: Windows\nOS: Linux")
	assert.Equal(t, []KeyValue{{Key: "os", Value: "Linux"}}, got)
}

func TestGuessFieldsOSPrecedence(t *testing.T) {
	tests := []struct {
		message string
		want    any
	}{
		{message: "on windows and also my android phone", want: "Windows"},
		{message: "my MacBook running macOS", want: "macOS"},
		{message: "android and iphone both fail", want: "Android"},
		{message: "my iPhone can't connect", want: "iOS"},
		{message: "ubuntu laptop", want: "Linux"},
		{message: "printer broke", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := GuessFields(tt.message)
			if tt.want == nil {
				assert.NotContains(t, got, "os")
				return
			}
			assert.Equal(t, tt.want, got["os"])
		})
	}
}

func TestGuessFieldsMFA(t *testing.T) {
	assert.Equal(t, "yes", GuessFields("MFA works fine")["mfa_working"])
	assert.Equal(t, "no", GuessFields("my 2fa is broken")["mfa_working"])
	assert.NotContains(t, GuessFields("no mention here"), "mfa_working")
}

func TestMergeCollectedPassPolicies(t *testing.T) {
	collected := map[string]any{"os": "Linux", "user_dept": "Finance"}
	context := map[string]any{
		"os":           "Windows",
		"Device_Model": "X1",
		"skip":         nil,
	}
	msg := "Using windows laptop\nuser_dept: IT\nmfa works"

	MergeCollected(collected, context, msg)

	// context does not overwrite, key normalized
	assert.Equal(t, "Linux", collected["os"])
	assert.Equal(t, "X1", collected["device_model"])
	assert.NotContains(t, collected, "skip")
	// inline override
	assert.Equal(t, "IT", collected["user_dept"])
	// heuristic fills only unset fields
	assert.Equal(t, "yes", collected["mfa_working"])
}

func TestMergeCollectedSteps(t *testing.T) {
	collected := map[string]any{}

	res := MergeCollected(collected, nil, "tried: rebooted laptop; reinstalled client;\nsteps_attempted = cleared cache")

	assert.Equal(t, []string{"rebooted laptop", "reinstalled client", "cleared cache"}, res.Steps)
	assert.NotContains(t, collected, "tried")
	assert.NotContains(t, collected, "steps_attempted")
}

func TestMergeCollectedBlankValuesStayOpen(t *testing.T) {
	collected := map[string]any{"vpn_client": "  "}
	context := map[string]any{"os": " ", "vpn_client": "AnyConnect"}

	MergeCollected(collected, context, "I am on windows 11")

	assert.Equal(t, "Windows", collected["os"])
	assert.Equal(t, "AnyConnect", collected["vpn_client"])

	field, missing := NextMissingField(&Flow{RequiredFields: []string{"os", "vpn_client"}}, collected)
	assert.False(t, missing, field)
}
