// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vaultclient

import "time"

// AuthMode is the tagged variant over a vault's authentication method
// (spec §3 Vault, §9 "represent as a tagged variant").
type AuthMode string

const (
	AuthModeK8s        AuthMode = "k8s"
	AuthModeAppRole    AuthMode = "appRole"
	AuthModeToken      AuthMode = "token"
	AuthModeClientCert AuthMode = "clientCert"
	// AuthModeUnknown is the fallthrough for any configured mode this
	// module does not recognize. Preserved per spec §9: "the unknown
	// case implicitly falls through to the function-level return
	// 'unknown'; ensure this is preserved."
	AuthModeUnknown AuthMode = "unknown"
)

// QueryAuthType maps a raw configured auth-method string onto an
// AuthMode, falling through to AuthModeUnknown for anything unrecognized
// (spec §9 Open Question: preserve the unknown fallthrough).
func QueryAuthType(raw string) AuthMode {
	switch AuthMode(raw) {
	case AuthModeK8s, AuthModeAppRole, AuthModeToken, AuthModeClientCert:
		return AuthMode(raw)
	default:
		return AuthModeUnknown
	}
}

// Kind is the vault's KV engine version, which determines response
// unwrapping (spec §4.D body decoding).
type Kind string

const (
	KindKVv1 Kind = "kv_v1"
	KindKVv2 Kind = "kv_v2"
)

const (
	// DefaultAppRoleSecretName is the local secret name from which the
	// appRole secret_id is read when Config.AppRoleSecretName is unset.
	DefaultAppRoleSecretName = "appRoleSecret"
	// AppRoleSecretIDKey is the key within that local secret.
	AppRoleSecretIDKey = "secret-id"
	// ServiceAccountTokenPath is the default k8s service-account JWT
	// file location (spec §6).
	ServiceAccountTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"
)

// Config is the configuration half of a Vault (spec §3 Vault). It is
// built by the embedding process from process configuration under
// `vaults/*` (spec §6); the property-tree/JSON parser that produces it
// is an external collaborator per spec §1 and is not this module's
// concern.
type Config struct {
	VaultID  string
	Category string
	Kind     Kind
	BaseURL  string
	// Mount is the secrets engine mount path used to build the fetch
	// location (teacher: vault/requests.go's kvReadRequestV1/V2 mount
	// field). Defaults to "secret".
	Mount     string
	Namespace string

	// LocationTemplate is the fetch path template, substituting ${secret}
	// and ${version} (spec §4.D "Location template from config with
	// ${secret}->secret, ${version}->version or \"1\""). When unset, it
	// defaults to the standard kv_v1/kv_v2 path shape under Mount (teacher:
	// vault/requests.go's kvReadRequestV1/V2).
	LocationTemplate string

	AuthMode AuthMode
	Role     string

	AppRoleID         string
	AppRoleSecretName string

	StaticToken string

	Retries   int
	RetryWait time.Duration

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	SkipTLSVerify bool
	TLSServerName string
	CACertPEM     []byte

	// ServiceAccountTokenPath overrides ServiceAccountTokenPath, for tests.
	ServiceAccountTokenPath string
}

func (c Config) effectiveKind() Kind {
	if c.Kind == "" {
		return KindKVv2
	}
	return c.Kind
}

func (c Config) effectiveMount() string {
	if c.Mount == "" {
		return "secret"
	}
	return c.Mount
}

// effectiveLocationTemplate returns the configured fetch path template, or
// the standard kv_v1/kv_v2 shape under Mount if none was configured.
func (c Config) effectiveLocationTemplate() string {
	if c.LocationTemplate != "" {
		return c.LocationTemplate
	}
	switch c.effectiveKind() {
	case KindKVv1:
		return "/v1/" + c.effectiveMount() + "/${secret}"
	default: // KindKVv2
		return "/v1/" + c.effectiveMount() + "/data/${secret}?version=${version}"
	}
}

func (c Config) effectiveAppRoleSecretName() string {
	if c.AppRoleSecretName == "" {
		return DefaultAppRoleSecretName
	}
	return c.AppRoleSecretName
}

func (c Config) effectiveSATokenPath() string {
	if c.ServiceAccountTokenPath == "" {
		return ServiceAccountTokenPath
	}
	return c.ServiceAccountTokenPath
}
