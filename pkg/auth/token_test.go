package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueResolveRoundtrip(t *testing.T) {
	tk := New("secret")

	tok, err := tk.Issue("session-123", time.Hour)
	require.NoError(t, err)

	id, err := tk.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, "session-123", id)
}

func TestResolveRejectsGarbage(t *testing.T) {
	tk := New("secret")
	_, err := tk.Resolve("not-a-token")
	assert.Error(t, err)
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	tok, err := New("secret-a").Issue("id", time.Hour)
	require.NoError(t, err)
	_, err = New("secret-b").Resolve(tok)
	assert.Error(t, err)
}

func TestIssueRequiresID(t *testing.T) {
	_, err := New("secret").Issue("", time.Hour)
	assert.Error(t, err)
}
