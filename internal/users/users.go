// Package users mirrors identities into profile rows and manages role grants.
package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrUnknownRole = errors.New("unknown role")
)

type Profile struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	ProfileImage string    `json:"profile_image"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"-"`
}

type Repo struct{ DB *pgxpool.Pool }

// Ensure creates the profile on first sight and keeps email, name and picture
// in step with the token afterwards. Empty token fields never clear stored ones.
func (r *Repo) Ensure(ctx context.Context, id auth.Identity) (Profile, error) {
	var p Profile
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users (uid, email, full_name, profile_image)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid) DO UPDATE SET
			email         = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			full_name     = COALESCE(NULLIF(EXCLUDED.full_name, ''), users.full_name),
			profile_image = COALESCE(NULLIF(EXCLUDED.profile_image, ''), users.profile_image)
		RETURNING uid, email, full_name, profile_image, created_at`,
		id.UID, id.Email, id.Name, id.Picture).
		Scan(&p.UID, &p.Email, &p.FullName, &p.ProfileImage, &p.CreatedAt)
	if err != nil {
		return Profile{}, fmt.Errorf("ensure user: %w", err)
	}
	return p, nil
}

func (r *Repo) Get(ctx context.Context, uid string) (Profile, error) {
	var p Profile
	err := r.DB.QueryRow(ctx, `SELECT uid, email, full_name, profile_image, created_at FROM users WHERE uid=$1`, uid).
		Scan(&p.UID, &p.Email, &p.FullName, &p.ProfileImage, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get user: %w", err)
	}
	return p, nil
}

// Grants is the role table.
type Grants interface {
	Has(ctx context.Context, uid, role string) (bool, error)
	Grant(ctx context.Context, uid, role string) error
	Revoke(ctx context.Context, uid, role string) error
}

func (r *Repo) Has(ctx context.Context, uid, role string) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_roles WHERE uid=$1 AND role=$2)`, uid, role).Scan(&ok)
	return ok, err
}

func (r *Repo) Grant(ctx context.Context, uid, role string) error {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO user_roles (uid, role)
		SELECT uid, $2 FROM users WHERE uid=$1
		ON CONFLICT DO NOTHING`, uid, role)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// either already granted or no such user
		if _, err := r.Get(ctx, uid); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Revoke(ctx context.Context, uid, role string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM user_roles WHERE uid=$1 AND role=$2`, uid, role)
	return err
}

// Roles answers role questions from Redis, falling back to the grant table.
type Roles struct {
	Grants Grants
	Redis  redis.Cmdable
}

func roleKey(uid string) string { return fmt.Sprintf(redisx.KeyRole, uid) }
func roleGenKey(uid string) string { return fmt.Sprintf(redisx.KeyRoleGen, uid) }

// Role is "admin" for holders of the admin grant and "user" for everyone else.
func (r *Roles) Role(ctx context.Context, uid string) (string, error) {
	if r.Redis != nil {
		if v, err := r.Redis.Get(ctx, roleKey(uid)).Result(); err == nil {
			return v, nil
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("users: role cache read: %v", err)
		}
	}
	var gen int64
	var genErr error
	if r.Redis != nil {
		gen, genErr = redisx.Generation(ctx, r.Redis, roleGenKey(uid))
	}
	admin, err := r.Grants.Has(ctx, uid, RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("lookup role: %w", err)
	}
	role := RoleUser
	if admin {
		role = RoleAdmin
	}
	if r.Redis == nil {
		return role, nil
	}
	if genErr != nil {
		log.Printf("users: role generation: %v", genErr)
		return role, nil
	}
	// a grant change during the lookup leaves the cache empty
	if _, err := redisx.SetIfGeneration(ctx, r.Redis, roleGenKey(uid), gen, roleKey(uid), role, redisx.TTLRole); err != nil {
		log.Printf("users: role cache write: %v", err)
	}
	return role, nil
}

func (r *Roles) IsAdmin(ctx context.Context, uid string) (bool, error) {
	role, err := r.Role(ctx, uid)
	return role == RoleAdmin, err
}

func (r *Roles) Grant(ctx context.Context, uid, role string) error {
	if role != RoleAdmin {
		return ErrUnknownRole
	}
	if err := r.Grants.Grant(ctx, uid, role); err != nil {
		return err
	}
	return r.forget(ctx, uid)
}

func (r *Roles) Revoke(ctx context.Context, uid, role string) error {
	if role != RoleAdmin {
		return ErrUnknownRole
	}
	if err := r.Grants.Revoke(ctx, uid, role); err != nil {
		return err
	}
	return r.forget(ctx, uid)
}

func (r *Roles) forget(ctx context.Context, uid string) error {
	if r.Redis == nil {
		return nil
	}
	return redisx.Bump(ctx, r.Redis, roleGenKey(uid), roleKey(uid))
}
