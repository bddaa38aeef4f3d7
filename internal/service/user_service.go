package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"oneps/internal/core/apperr"
	"oneps/internal/core/auth"
	"oneps/internal/core/cache"
	"oneps/internal/domain"
	"oneps/pkg/utils"
)

type UserService struct {
	store      domain.Store
	images     domain.ImageStore
	cache      *cache.Cache
	adminEmail string
	log        *zap.Logger
}

func NewUserService(store domain.Store, images domain.ImageStore, c *cache.Cache, adminEmail string, l *zap.Logger) *UserService {
	return &UserService{store: store, images: images, cache: c, adminEmail: normEmail(adminEmail), log: l}
}

// RegisterInput 注册与管理端建号共用
type RegisterInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

type ProfileInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string // 为空则不改密码
	ConfirmPassword string
}

// IdentityOf 令牌里的身份总是取自存储的用户
func IdentityOf(u *domain.User) auth.Identity {
	return auth.Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// validEmail 只要求 local@host；管理员默认邮箱 admin@admin 没有顶级域
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && strings.Count(email, "@") == 1 && !strings.ContainsAny(email, " \t")
}

// roleFor 配置的管理员邮箱只在建号时生效
func (s *UserService) roleFor(email string) string {
	if s.adminEmail != "" && email == s.adminEmail {
		return auth.RoleAdmin
	}
	return auth.RoleUser
}

func checkPasswords(pw, confirm string) error {
	if pw == "" {
		return apperr.Validation("password", "password is required")
	}
	if pw != confirm {
		return apperr.Validation("confirmPassword", "passwords do not match")
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	email := normEmail(in.Email)
	switch {
	case in.Name == "":
		return nil, apperr.Validation("name", "name is required")
	case email == "":
		return nil, apperr.Validation("email", "email is required")
	case !validEmail(email):
		return nil, apperr.Validation("email", "email is invalid")
	case in.Phone == "":
		return nil, apperr.Validation("phone", "phone is required")
	}
	if err := checkPasswords(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         s.roleFor(email),
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

var errBadCredentials = apperr.Unauthenticated("invalid email or password")

func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.store.Users().FindByEmail(ctx, normEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, apperr.Internal("", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, errBadCredentials
	}
	return u, nil
}

// BootstrapAdmin 启动时把已存在的管理员邮箱账号提升为 admin
func (s *UserService) BootstrapAdmin(ctx context.Context) error {
	if s.adminEmail == "" {
		return nil
	}
	n, err := s.store.Users().SetRole(ctx, s.adminEmail, auth.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("admin promoted", zap.String("email", s.adminEmail))
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "user")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "user")
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		u.Name = v
	}
	if v := normEmail(in.Email); v != "" {
		if !validEmail(v) {
			return nil, apperr.Validation("email", "email is invalid")
		}
		u.Email = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		u.Phone = v
	}
	if in.Password != "" || in.ConfirmPassword != "" {
		if err := checkPasswords(in.Password, in.ConfirmPassword); err != nil {
			return nil, err
		}
		if u.PasswordHash, err = utils.HashPassword(in.Password); err != nil {
			return nil, apperr.Internal("", err)
		}
	}
	if err := s.store.Users().Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("", err)
	}
	return u, nil
}

// DeleteAccount 在一个事务里级联删除：用户点的赞（并重算计数）、他人对其帖子的赞、帖子、用户；
// 提交后再释放图片
func (s *UserService) DeleteAccount(ctx context.Context, id string) error {
	var released []domain.Post
	err := s.store.Tx(ctx, func(tx domain.Store) error {
		if _, err := tx.Users().FindByID(ctx, id); err != nil {
			return err
		}
		liked, err := tx.Likes().PostIDsByUser(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Likes().DeleteByUser(ctx, id); err != nil {
			return err
		}
		own, err := tx.Posts().ListByUser(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Likes().DeleteByPosts(ctx, postIDs(own)); err != nil {
			return err
		}
		if released, err = tx.Posts().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.Posts().RecountLikes(ctx, liked); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		return classify(err, "user")
	}
	s.log.Info("account deleted", zap.String("user_id", id), zap.Int("posts", len(released)))
	invalidateFeed(ctx, s.cache, s.log)
	releaseImages(ctx, s.images, s.log, released)
	return nil
}

// ---- 管理端 ----

func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	users, total, err := s.store.Users().List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	return users, total, nil
}

// Create 管理员建号，可直接指定角色
func (s *UserService) Create(ctx context.Context, in RegisterInput, role string) (*domain.User, error) {
	if role != "" && role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, apperr.Validation("role", "role must be user or admin")
	}
	u, err := s.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	if role != "" && role != u.Role {
		u.Role = role
		if err := s.store.Users().Update(ctx, u); err != nil {
			return nil, apperr.Internal("", err)
		}
	}
	return u, nil
}

// AdminUpdate 资料字段同 UpdateProfile，另可改角色
func (s *UserService) AdminUpdate(ctx context.Context, id string, in ProfileInput, role string) (*domain.User, error) {
	if role != "" && role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, apperr.Validation("role", "role must be user or admin")
	}
	u, err := s.UpdateProfile(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if role != "" && role != u.Role {
		u.Role = role
		if err := s.store.Users().Update(ctx, u); err != nil {
			return nil, apperr.Internal("", err)
		}
	}
	return u, nil
}

// Counts 管理首页
type Counts struct {
	Users int64 `json:"users"`
	Posts int64 `json:"posts"`
	Likes int64 `json:"likes"`
}

func (s *UserService) Counts(ctx context.Context) (Counts, error) {
	var (
		c   Counts
		err error
	)
	if c.Users, err = s.store.Users().Count(ctx); err != nil {
		return c, apperr.Internal("", err)
	}
	if c.Posts, err = s.store.Posts().Count(ctx); err != nil {
		return c, apperr.Internal("", err)
	}
	if c.Likes, err = s.store.Likes().Count(ctx); err != nil {
		return c, apperr.Internal("", err)
	}
	return c, nil
}
