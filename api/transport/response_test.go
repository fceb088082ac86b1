package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicepulse/datalayer/domain"
)

func TestSuccessEnvelopeShape(t *testing.T) {
	env := NewSuccess(map[string]string{"id": "t1"}, nil)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.String()), &decoded))

	assert.Equal(t, "success", decoded["status"])
	assert.NotContains(t, decoded, "code")
	assert.NotContains(t, decoded, "error")
}

func TestErrorEnvelopeCarriesDomainCode(t *testing.T) {
	env := NewError(domain.ErrCodeNotFound, "ticket not found", nil)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.String()), &decoded))

	assert.Equal(t, "error", decoded["status"])
	assert.Equal(t, string(domain.ErrCodeNotFound), decoded["code"])
	assert.Equal(t, "ticket not found", decoded["error"])
	assert.NotContains(t, decoded, "data")
}
