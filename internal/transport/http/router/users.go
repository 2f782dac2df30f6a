package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-account-backend/internal/domain"
	"go-account-backend/internal/transport/http/ez"
)

type usersModule struct{ d Deps }

func (m *usersModule) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 username/email 模糊搜
	}
	type listOut struct {
		Total int64         `json:"total"`
		Items []domain.User `json:"items"`
	}
	ez.RegisterAction[listQ, listOut](e, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			users, total, err := m.d.Users.List(c.Request.Context(), in.Offset, in.Limit)
			if err != nil {
				return listOut{}, err
			}
			if s := strings.TrimSpace(in.Q); s != "" {
				filtered := users[:0]
				for _, u := range users {
					if strings.Contains(u.Username, s) || strings.Contains(u.Email, s) {
						filtered = append(filtered, u)
					}
				}
				users = filtered
			}
			return listOut{Total: total, Items: users}, nil
		},
	})

	type createIn struct {
		Username string                  `json:"username" binding:"required,max=80"`
		Email    string                  `json:"email" binding:"required,email,max=120"`
		Password string                  `json:"password" binding:"required,min=8"`
		Roles    []domain.RoleIdentifier `json:"roles"` // 数字按 ID，字符串按名称
	}
	ez.RegisterAction[createIn, *domain.User](e, ez.Action[createIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (*domain.User, error) {
			return m.d.Users.Create(c.Request.Context(),
				strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), in.Password, in.Roles)
		},
	})

	ez.RegisterAction[struct{}, *domain.User](e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:ident",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return m.d.Users.Resolve(c.Request.Context(), c.Param("ident"))
		},
	})

	ez.RegisterAction[struct{}, gin.H](e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:ident",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			u, err := m.d.Users.Resolve(c.Request.Context(), c.Param("ident"))
			if err != nil {
				return nil, err
			}
			if err := m.d.Users.Delete(c.Request.Context(), u); err != nil {
				return nil, err
			}
			invalidateUser(c.Request.Context(), m.d, u.ID)
			return gin.H{"id": u.ID}, nil
		},
	})

	// 管理员重置口令，不要求旧口令
	type passwordIn struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	ez.RegisterAction[passwordIn, gin.H](e, ez.Action[passwordIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/:ident/password",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *passwordIn) (gin.H, error) {
			u, err := m.d.Users.Resolve(c.Request.Context(), c.Param("ident"))
			if err != nil {
				return nil, err
			}
			if err := m.d.Users.SetPassword(c.Request.Context(), u, in.Password); err != nil {
				return nil, err
			}
			invalidateUser(c.Request.Context(), m.d, u.ID)
			return gin.H{"id": u.ID}, nil
		},
	})

	// GET /users/:ident/roles?has=admin 带 has 时返回谓词结果
	type rolesQ struct {
		Has string `form:"has"`
	}
	type rolesOut struct {
		Roles []domain.Role `json:"roles"`
		Has   *bool         `json:"has,omitempty"`
	}
	ez.RegisterAction[rolesQ, rolesOut](e, ez.Action[rolesQ, rolesOut]{
		Method: http.MethodGet,
		Path:   "/users/:ident/roles",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *rolesQ) (rolesOut, error) {
			u, err := m.d.Users.Resolve(c.Request.Context(), c.Param("ident"))
			if err != nil {
				return rolesOut{}, err
			}
			out := rolesOut{Roles: u.Roles}
			if in.Has != "" {
				has := m.d.Users.HasRole(u, in.Has)
				out.Has = &has
			}
			return out, nil
		},
	})

	type addRoleIn struct {
		Role domain.RoleIdentifier `json:"role"`
	}
	ez.RegisterAction[addRoleIn, gin.H](e, ez.Action[addRoleIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:ident/roles",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *addRoleIn) (gin.H, error) {
			if in.Role.IsZero() {
				return nil, ez.BadRequest("missing role")
			}
			u, err := m.d.Users.Resolve(c.Request.Context(), c.Param("ident"))
			if err != nil {
				return nil, err
			}
			role, err := m.d.Users.AddRole(c.Request.Context(), u, in.Role)
			if err != nil {
				return nil, err
			}
			invalidateUser(c.Request.Context(), m.d, u.ID)
			return gin.H{"id": u.ID, "role": role.Name}, nil
		},
	})

	ez.RegisterAction[struct{}, gin.H](e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:ident/roles/:role",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			u, err := m.d.Users.Resolve(c.Request.Context(), c.Param("ident"))
			if err != nil {
				return nil, err
			}
			role, err := m.d.Users.RemoveRole(c.Request.Context(), u,
				domain.ParseRoleIdentifier(c.Param("role")))
			if err != nil {
				return nil, err
			}
			invalidateUser(c.Request.Context(), m.d, u.ID)
			return gin.H{"id": u.ID, "role": role.Name}, nil
		},
	})
}
