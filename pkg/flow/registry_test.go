package flow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFlowsYAML = `
categories:
  vpn:
    description: VPN problems
    required_fields: [os, vpn_client, error_message]
    questions:
      os: Which OS?
      vpn_client: Which VPN client?
  email:
    description: Mail problems
    required_fields: [email_client]
fallback:
  description: Anything else
  required_fields: [summary]
`

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := ParseRegistry([]byte(testFlowsYAML))
	require.NoError(t, err)
	return r
}

func TestClassify(t *testing.T) {
	r := mustRegistry(t)

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "vpn keyword", message: "My VPN keeps dropping", want: "vpn"},
		{name: "anyconnect", message: "AnyConnect says login failed", want: "vpn"},
		{name: "email", message: "Outlook won't open", want: "email"},
		{name: "wifi", message: "Can't join the Wi-Fi on floor 3", want: "wifi"},
		{name: "first group wins", message: "email over vpn is broken", want: "vpn"},
		{name: "no match", message: "printer is jammed", want: FallbackKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Classify(tt.message))
		})
	}
}

func TestGetFallsBackForUnknownKey(t *testing.T) {
	r := mustRegistry(t)

	assert.Equal(t, "vpn", r.Get("vpn").Key)
	assert.Equal(t, FallbackKey, r.Get("printer").Key)
	assert.Equal(t, FallbackKey, r.Get("").Key)
}

func TestParseRegistryDefaults(t *testing.T) {
	r := mustRegistry(t)

	assert.Equal(t, defaultMaxSteps, r.Get("vpn").MaxSteps)
	assert.Equal(t, []string{"email", "vpn"}, r.Categories())
	assert.Equal(t, []string{"summary"}, r.Get(FallbackKey).RequiredFields)
}

func TestParseRegistryErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing fallback", yaml: "categories:\n  vpn:\n    required_fields: [os]\n"},
		{name: "broken yaml", yaml: "categories: [unclosed"},
		{name: "invalid field name", yaml: "categories:\n  vpn:\n    required_fields: ['bad field']\nfallback:\n  required_fields: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidFlowConfig)
		})
	}
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testFlowsYAML), 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "vpn", r.Get("vpn").Key)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidFlowConfig)
}

func TestLoadRegistryShippedConfig(t *testing.T) {
	r, err := LoadRegistry(filepath.Join("..", "..", "configs", "flows.yaml"))
	require.NoError(t, err)

	for _, key := range []string{"vpn", "email", "wifi"} {
		assert.Equal(t, key, r.Get(key).Key)
	}
	assert.Equal(t, `What exact error message do you see? You can paste it as "error_message: ...".`,
		QuestionFor(r.Get("vpn"), "error_message"))
	assert.Equal(t, `Could you describe the problem in one sentence? You can write "summary: ...".`,
		QuestionFor(r.Get(FallbackKey), "summary"))
}

func TestClassifierOverride(t *testing.T) {
	r, err := ParseRegistry([]byte(testFlowsYAML + `
classifier:
  - category: email
    keywords: [Calendar]
`))
	require.NoError(t, err)

	assert.Equal(t, "email", r.Classify("calendar invites vanish"))
	assert.Equal(t, FallbackKey, r.Classify("vpn down"))
}

func TestNextMissingField(t *testing.T) {
	f := mustRegistry(t).Get("vpn")

	tests := []struct {
		name      string
		collected map[string]any
		want      string
		wantFound bool
	}{
		{name: "empty", collected: map[string]any{}, want: "os", wantFound: true},
		{name: "declared order", collected: map[string]any{"error_message": "809"}, want: "os", wantFound: true},
		{name: "second field", collected: map[string]any{"os": "Windows"}, want: "vpn_client", wantFound: true},
		{name: "blank string counts as missing", collected: map[string]any{"os": "Windows", "vpn_client": "   "}, want: "vpn_client", wantFound: true},
		{name: "nil counts as missing", collected: map[string]any{"os": nil}, want: "os", wantFound: true},
		{name: "non-string scalar is present", collected: map[string]any{"os": "Linux", "vpn_client": "pulse", "error_message": 809}, wantFound: false},
		{
			name:      "all present",
			collected: map[string]any{"os": "Windows", "vpn_client": "AnyConnect", "error_message": "809", "extra": "x"},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := NextMissingField(f, tt.collected)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuestionFor(t *testing.T) {
	f := mustRegistry(t).Get("vpn")

	assert.Equal(t, "Which OS?", QuestionFor(f, "os"))
	assert.Equal(t, "Please provide: error_message", QuestionFor(f, "error_message"))
}
