package domain

// Site holds presentation settings shared by every page.
type Site struct {
	Title       string
	Description string
	Footer      string
}
