package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListUnmarshal(t *testing.T) {
	var s stringList
	require.NoError(t, json.Unmarshal([]byte(`["Cement","Sand"]`), &s))
	assert.Equal(t, stringList{"Cement", "Sand"}, s)

	// A bare string is accepted as a one-element list.
	s = nil
	require.NoError(t, json.Unmarshal([]byte(`"Cement"`), &s))
	assert.Equal(t, stringList{"Cement"}, s)

	// An empty string yields an empty list, not [""].
	s = nil
	require.NoError(t, json.Unmarshal([]byte(`""`), &s))
	assert.Empty(t, s)

	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
}

func TestEmailRe(t *testing.T) {
	assert.True(t, emailRe.MatchString("seller@etukas.com"))
	assert.True(t, emailRe.MatchString("a.b+c@sub.example.co"))
	assert.False(t, emailRe.MatchString("not-an-email"))
	assert.False(t, emailRe.MatchString("missing@tld"))
	assert.False(t, emailRe.MatchString("two@@ats.com"))
}
