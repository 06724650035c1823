package domain

// Profile is the read-only projection of a marketplace user that the
// messaging core needs: just enough to resolve display names.
type Profile struct {
	ID   string
	Name string
}

// FallbackName is shown when a sender's profile cannot be resolved.
const FallbackName = "Someone"

// DisplayName returns the profile name or the fallback label.
func (p Profile) DisplayName() string {
	if p.Name == "" {
		return FallbackName
	}
	return p.Name
}
