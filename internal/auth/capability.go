package auth

// Capability is a bit-set of what the authenticated caller may do with the
// ledger. It is resolved once from the caller's role at the access boundary;
// handlers check capabilities, never role strings.
type Capability uint8

const (
	CanView Capability = 1 << iota
	CanLaunch
	CanRedeem
	CanConfigure
)

// Has reports whether every capability in want is present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// FromRole maps an institutional role to its ledger capabilities. Unknown
// roles get nothing.
func FromRole(role string) Capability {
	switch role {
	case "admin", "diretor":
		return CanView | CanLaunch | CanRedeem | CanConfigure
	case "coordenador":
		return CanView | CanLaunch | CanRedeem
	case "professor":
		return CanView | CanLaunch
	case "financeiro", "tesoureiro":
		return CanView | CanRedeem
	case "secretario":
		return CanView
	default:
		return 0
	}
}
