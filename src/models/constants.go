package models

// CredentialKind identifies the third-party integration a credential belongs to
type CredentialKind string

const (
	// KindCtrlPanel is the CtrlPanel game panel API key
	KindCtrlPanel CredentialKind = "ctrlpanel"
	// KindHetrixTools is the HetrixTools uptime monitoring API key
	KindHetrixTools CredentialKind = "hetrixtools"
	// KindZohoMail is the Zoho Mail SMTP account used for outgoing mail
	KindZohoMail CredentialKind = "zoho_mail"
)

// CredentialKinds lists every supported kind in route registration order
var CredentialKinds = []CredentialKind{KindCtrlPanel, KindHetrixTools, KindZohoMail}

// Valid reports whether k is one of the supported kinds
func (k CredentialKind) Valid() bool {
	switch k {
	case KindCtrlPanel, KindHetrixTools, KindZohoMail:
		return true
	}
	return false
}

// IsSMTP reports whether the kind stores SMTP account settings instead of an API key
func (k CredentialKind) IsSMTP() bool {
	return k == KindZohoMail
}

// RouteName is the URL segment used for the kind's admin endpoints
func (k CredentialKind) RouteName() string {
	if k == KindZohoMail {
		return "zoho"
	}
	return string(k)
}

// Secret field names stored inside a credential record
const (
	FieldAPIKey    = "api_key"
	FieldHost      = "host"
	FieldPort      = "port"
	FieldUsername  = "username"
	FieldPassword  = "password"
	FieldFromEmail = "from_email"
	FieldFromName  = "from_name"
)
