package workeragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvCredentialResolverResolvesSetVar(t *testing.T) {
	t.Setenv("VAJRA_TEST_TOKEN", "secret-value")
	v, ok := EnvCredentialResolver{}.Resolve("VAJRA_TEST_TOKEN")
	assert.True(t, ok)
	assert.Equal(t, "secret-value", v)
}

func TestEnvCredentialResolverMissingVar(t *testing.T) {
	_, ok := EnvCredentialResolver{}.Resolve("VAJRA_TEST_DOES_NOT_EXIST")
	assert.False(t, ok)
}

func TestResolveParametersReplacesCredentialReferences(t *testing.T) {
	t.Setenv("API_KEY", "abc123")
	params := map[string]string{
		"url":           "http://example.com",
		"authorization": "cred:API_KEY",
	}
	out := resolveParameters(params, EnvCredentialResolver{})
	assert.Equal(t, "abc123", out["authorization"])
	assert.Equal(t, "http://example.com", out["url"])
}

func TestResolveParametersLeavesUnresolvableReferenceLiteral(t *testing.T) {
	params := map[string]string{"authorization": "cred:MISSING_VAR"}
	out := resolveParameters(params, EnvCredentialResolver{})
	assert.Equal(t, "cred:MISSING_VAR", out["authorization"])
}

func TestResolveParametersNilResolverPassesThrough(t *testing.T) {
	params := map[string]string{"authorization": "cred:API_KEY"}
	out := resolveParameters(params, nil)
	assert.Equal(t, params["authorization"], out["authorization"])
}
