package view

import "github.com/ariefcatur/go-storefront/internal/auth"

type MenuItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Menu is the slide-out navigation panel.
type Menu struct {
	LoggedIn   bool       `json:"logged_in"`
	Name       string     `json:"name"`
	Subtitle   string     `json:"subtitle"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Items      []MenuItem `json:"items"`
	Admin      []MenuItem `json:"admin,omitempty"`
	CartCount  int        `json:"cart_count"`
	ShowCart   bool       `json:"show_cart_badge"`
	ShowLogout bool       `json:"show_logout"`
}

var (
	commonItems = []MenuItem{{"Home", "/"}, {"Products", "/products"}}
	guestItems  = []MenuItem{{"Login", "/login"}, {"Sign Up", "/signup"}}
	userItems   = []MenuItem{{"Cart", "/cart"}}
	adminItems  = []MenuItem{{"Admin Panel", "/admin"}}
)

// MenuUser is what the menu needs to know about a signed-in caller.
type MenuUser struct {
	Identity     auth.Identity
	FullName     string
	ProfileImage string
	Admin        bool
}

// GuestMenu is the panel for callers without a session.
func GuestMenu() Menu {
	return Menu{
		Name:     "Guest",
		Subtitle: "Not logged in",
		Items:    append(append([]MenuItem{}, commonItems...), guestItems...),
	}
}

// UserMenu names the caller by profile full name, falling back to the token
// name and then to the local part of the email.
func UserMenu(u MenuUser, cartCount int) Menu {
	id := u.Identity
	if u.FullName != "" {
		id.Name = u.FullName
	}
	m := Menu{
		LoggedIn:   true,
		Name:       id.DisplayName(),
		Subtitle:   id.Email,
		AvatarURL:  u.ProfileImage,
		Items:      append(append([]MenuItem{}, commonItems...), userItems...),
		CartCount:  cartCount,
		ShowCart:   cartCount > 0,
		ShowLogout: true,
	}
	if m.AvatarURL == "" {
		m.AvatarURL = id.Picture
	}
	if u.Admin {
		m.Admin = append([]MenuItem{}, adminItems...)
	}
	return m
}
