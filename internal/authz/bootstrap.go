package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
// super_admin 在中间件层直接放行，这里仍落一条兜底策略保证角色存在。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "moderator",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/categories/:id", Action: "*"},
				{Object: "/admin/templates", Action: "*"},
				{Object: "/admin/templates/:id", Action: "*"},
				{Object: "/admin/templates/:id/deploy", Action: "POST"},
				{Object: "/admin/plans", Action: "*"},
				{Object: "/admin/plans/:id", Action: "*"},
				{Object: "/admin/newsletter", Action: "GET"},
				{Object: "/admin/newsletter/:id", Action: "DELETE"},
			},
			Immutable: true,
		},
		{
			Role:     "admin",
			Inherits: []string{"moderator"},
			Policies: []Policy{
				{Object: "/admin/users", Action: "*"},
				{Object: "/admin/users/:id", Action: "*"},
				{Object: "/admin/users/:id/status", Action: "PATCH"},
				{Object: "/admin/projects", Action: "GET"},
				{Object: "/admin/projects/:id", Action: "GET"},
				{Object: "/admin/payments", Action: "GET"},
				{Object: "/admin/payments/:id", Action: "GET"},
				{Object: "/admin/payment-channels", Action: "*"},
				{Object: "/admin/payment-channels/:id", Action: "*"},
				{Object: "/admin/audit-logs", Action: "GET"},
				{Object: "/admin/login-attempts", Action: "GET"},
				{Object: "/admin/user-login-logs", Action: "GET"},
				{Object: "/admin/dashboard/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role: "super_admin",
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
