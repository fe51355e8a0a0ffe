package profile

// Profile is a member's account record as exposed by the profile service.
// Orchestration only reads it.
type Profile struct {
	ID          string `json:"id"`
	ProfileName string `json:"profileName"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
	ProfilePic  string `json:"profilePic,omitempty"`
	CoverPic    string `json:"coverPic,omitempty"`
}
