package domain

// Identity is the read-only caller identity used to stamp ownership on the
// first save. The core never authenticates or authorizes.
type Identity struct {
	UserID string
	Role   string
}
