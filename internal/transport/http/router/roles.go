package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-account-backend/internal/domain"
	"go-account-backend/internal/transport/http/ez"
)

type rolesModule struct{ d Deps }

func (m *rolesModule) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction[struct{}, []domain.Role](e, ez.Action[struct{}, []domain.Role]{
		Method: http.MethodGet,
		Path:   "/roles",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Role, error) {
			return m.d.Roles.List(c.Request.Context())
		},
	})

	type createIn struct {
		Name        string `json:"name" binding:"required,max=80"`
		Description string `json:"description" binding:"omitempty,max=255"`
	}
	type createOut struct {
		Role    *domain.Role `json:"role"`
		Created bool         `json:"created"` // false 表示同名角色已存在，返回的是现有记录
	}
	ez.RegisterAction[createIn, createOut](e, ez.Action[createIn, createOut]{
		Method: http.MethodPost,
		Path:   "/roles",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (createOut, error) {
			role, created, err := m.d.Roles.Create(c.Request.Context(), strings.TrimSpace(in.Name), in.Description)
			if err != nil {
				return createOut{}, err
			}
			return createOut{Role: role, Created: created}, nil
		},
	})

	ez.RegisterAction[struct{}, *domain.Role](e, ez.Action[struct{}, *domain.Role]{
		Method: http.MethodGet,
		Path:   "/roles/:ident",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Role, error) {
			return m.d.Roles.Read(c.Request.Context(), domain.ParseRoleIdentifier(c.Param("ident")))
		},
	})

	type updateIn struct {
		Name        *string `json:"name" binding:"omitempty,max=80"`
		Description *string `json:"description" binding:"omitempty,max=255"`
	}
	ez.RegisterAction[updateIn, *domain.Role](e, ez.Action[updateIn, *domain.Role]{
		Method: http.MethodPut,
		Path:   "/roles/:ident",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *updateIn) (*domain.Role, error) {
			return m.d.Roles.Update(c.Request.Context(),
				domain.ParseRoleIdentifier(c.Param("ident")), in.Name, in.Description)
		},
	})

	// DELETE /roles/:ident?replacement=X 给了 replacement 就把持有者整体换绑
	ez.RegisterAction[struct{}, *domain.Role](e, ez.Action[struct{}, *domain.Role]{
		Method: http.MethodDelete,
		Path:   "/roles/:ident",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Role, error) {
			var replacement domain.RoleIdentifier
			if s := c.Query("replacement"); s != "" {
				replacement = domain.ParseRoleIdentifier(s)
			}
			return m.d.Roles.Delete(c.Request.Context(),
				domain.ParseRoleIdentifier(c.Param("ident")), replacement)
		},
	})
}
