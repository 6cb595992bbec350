package model

import "strings"

// Placeholder used when the identity provider supplies neither a name
// nor an email worth displaying.
const DefaultClinicUserName = "Clinic User"

// Principal is the authenticated identity-provider account attached to
// a request. It is always passed explicitly; there is no ambient
// session lookup.
type Principal struct {
	AuthID     string `json:"auth_id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// DisplayName derives a human-readable name: given+family name, falling
// back to the email, falling back to a constant placeholder.
func (p *Principal) DisplayName() string {
	name := strings.TrimSpace(p.GivenName + " " + p.FamilyName)
	if name != "" {
		return name
	}
	if p.Email != "" {
		return p.Email
	}
	return DefaultClinicUserName
}
