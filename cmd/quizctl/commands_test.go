package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quizlab-backend/internal/grading"
	"github.com/yungbote/quizlab-backend/internal/identity"
)

func TestGradeCommand(t *testing.T) {
	t.Setenv("LOG_MODE", "test")
	cmd := newGradeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--question", "Capital of France?", "--expected", "Paris", "--answer", "paris", "--lexicon", ""})
	require.NoError(t, cmd.Execute())

	var res grading.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.True(t, res.Correct)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "cli-secret")
	cmd := newTokenCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--anonymous"})
	require.NoError(t, cmd.Execute())

	caller, err := identity.NewVerifier("cli-secret").Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.True(t, caller.IsAnonymous)
}
