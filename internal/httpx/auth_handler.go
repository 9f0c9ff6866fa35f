package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/notice"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/internal/view"
)

type sessionReply struct {
	Profile users.Profile `json:"profile"`
	Role    string        `json:"role"`
	IsAdmin bool          `json:"is_admin"`
}

// startSession mirrors the caller into the users table. Clients call it
// whenever the identity provider reports a sign-in.
func (a *API) startSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	id := auth.FromContext(r.Context())
	p, err := a.Users.Ensure(ctx, *id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	role, err := a.Roles.Role(ctx, id.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.Role = role
	redirect := "/"
	if role == users.RoleAdmin {
		redirect = "/admin"
	}
	writeJSON(w, http.StatusOK, Response{
		Notices:  []notice.Notice{notice.Ok("Logged in successfully!")},
		Redirect: redirect,
		Data:     sessionReply{Profile: p, Role: role, IsAdmin: role == users.RoleAdmin},
	})
}

// endSession only acknowledges; tokens are revoked at the identity provider.
func (a *API) endSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Notices:  []notice.Notice{notice.Ok("Logged out successfully!")},
		Redirect: "/",
	})
}

type meReply struct {
	Identity auth.Identity `json:"identity"`
	Role     string        `json:"role"`
	Show     visibility    `json:"show"`
}

// visibility says which role-gated parts of the UI to display.
type visibility struct {
	Auth  bool `json:"auth"`
	Guest bool `json:"guest"`
	Admin bool `json:"admin"`
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	id := auth.FromContext(r.Context())
	role, err := a.Roles.Role(ctx, id.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	admin := role == users.RoleAdmin
	ok(w, http.StatusOK, meReply{Identity: *id, Role: role, Show: visibility{Auth: true, Admin: admin}})
}

type authErrorReq struct {
	Flow string `json:"flow"`
	Code string `json:"code"`
}

func (a *API) authError(w http.ResponseWriter, r *http.Request) {
	var req authErrorReq
	if err := decodeJSON(w, r, &req); err != nil || !auth.KnownFlow(auth.Flow(req.Flow)) {
		writeError(w, r, errBadRequest)
		return
	}
	msg := auth.Message(auth.Flow(req.Flow), req.Code)
	ok(w, http.StatusOK, map[string]string{"message": msg}, notice.Fail(msg))
}

func (a *API) menu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	id := auth.FromContext(r.Context())
	if id == nil {
		ok(w, http.StatusOK, view.GuestMenu())
		return
	}
	count := 0
	if c, err := a.Carts.Load(ctx, id.UID); err == nil {
		count = c.Count()
	} else {
		log.Printf("menu: load cart: %v", err)
	}
	ok(w, http.StatusOK, a.userMenu(ctx, id, count))
}

// userMenu degrades to the token's identity when profile or role lookups fail.
func (a *API) userMenu(ctx context.Context, id *auth.Identity, cartCount int) view.Menu {
	u := view.MenuUser{Identity: *id}
	if p, err := a.Users.Get(ctx, id.UID); err == nil {
		u.FullName, u.ProfileImage = p.FullName, p.ProfileImage
	} else if !errors.Is(err, users.ErrNotFound) {
		log.Printf("menu: load profile: %v", err)
	}
	if admin, err := a.Roles.IsAdmin(ctx, id.UID); err == nil {
		u.Admin = admin
	} else {
		log.Printf("menu: role: %v", err)
	}
	return view.UserMenu(u, cartCount)
}
