package workeragent

import (
	"os"
	"strings"
)

// credentialPrefix marks a taskParameters value as a credential
// reference rather than a literal (spec §4.9's wire-protocol invariant:
// "assignments carry references, not secrets"). A reference has the
// shape "cred:NAME"; NAME is resolved locally by the worker and never
// leaves its process.
const credentialPrefix = "cred:"

// CredentialResolver resolves a credential reference to its value. It
// is a narrow interface so a deployment can swap EnvCredentialResolver
// for a keyring- or keytab-backed implementation without touching the
// wire protocol or the task factories above it.
type CredentialResolver interface {
	Resolve(name string) (string, bool)
}

// EnvCredentialResolver resolves credential references against the
// worker process's own environment.
type EnvCredentialResolver struct{}

// Resolve looks up name as an environment variable.
func (EnvCredentialResolver) Resolve(name string) (string, bool) {
	return os.LookupEnv(name)
}

// resolveParameters returns a copy of params with every "cred:NAME"
// value replaced by CredentialResolver.Resolve(NAME). A reference to an
// unresolvable name is left untouched; the task factory it reaches will
// fail on the literal "cred:NAME" string, which surfaces the missing
// credential as an ordinary TASK_ERROR rather than a special case here.
func resolveParameters(params map[string]string, resolver CredentialResolver) map[string]string {
	if resolver == nil || len(params) == 0 {
		return params
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		if name, ok := strings.CutPrefix(v, credentialPrefix); ok {
			if resolved, found := resolver.Resolve(name); found {
				out[k] = resolved
				continue
			}
		}
		out[k] = v
	}
	return out
}
