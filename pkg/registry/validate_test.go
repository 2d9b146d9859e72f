package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_Clean(t *testing.T) {
	require.Empty(t, Validate([]byte(`{"relays": ["ws://a.example", "wss://b.example/x"]}`)))
	require.Empty(t, Validate([]byte(`{"relays": []}`)))
}

func TestValidate_MixedIssues(t *testing.T) {
	issues := Validate([]byte(`{"relays": ["ws://x", "ws://x:80", "not a url", 5]}`))
	require.Len(t, issues, 3)
	require.Equal(t, "duplicate (normalized): ws://x:80 (same as ws://x)", issues[0])
	require.Equal(t, "entry 2 invalid: invalid URL: not a url", issues[1])
	require.Equal(t, "entry 3 is not a non-empty string", issues[2])
}

func TestValidate_BlankEntry(t *testing.T) {
	issues := Validate([]byte(`{"relays": ["   ", "ws://a"]}`))
	require.Equal(t, []string{"entry 0 is not a non-empty string"}, issues)
}

func TestValidate_RootShapeIsFatal(t *testing.T) {
	for _, doc := range []string{`[]`, `"x"`, `null`, `{}`, `{"relays": "ws://a"}`, `{"relays": null}`, `{`} {
		issues := Validate([]byte(doc))
		require.Equal(t, []string{"root must be { relays: string[] }"}, issues, doc)
	}
}

func TestValidate_DuplicateReferencesFirstOriginal(t *testing.T) {
	issues := Validate([]byte(`{"relays": ["wss://A.example/", "wss://a.example", "wss://a.example:443"]}`))
	require.Equal(t, []string{
		"duplicate (normalized): wss://a.example (same as wss://A.example/)",
		"duplicate (normalized): wss://a.example:443 (same as wss://A.example/)",
	}, issues)
}
