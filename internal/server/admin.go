package server

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

func (s *Server) routes(api fiber.Router) {
	api.Get("/teams", s.listTeams)
	api.Post("/teams", s.createTeam)
	api.Delete("/teams/:id", s.deleteTeam)

	api.Get("/categories", s.listCategories)
	api.Post("/categories", s.createCategory)
	api.Delete("/categories/:id", s.deleteCategory)

	api.Get("/configs", s.listConfigs)
	api.Post("/configs", s.createConfig)
	api.Get("/configs/:id", s.getConfig)
	api.Put("/configs/:id", s.updateConfig)
	api.Delete("/configs/:id", s.deleteConfig)

	api.Get("/configs/:id/rules/:type", s.listRules)
	api.Post("/configs/:id/rules/:type", s.upsertRules)
	api.Delete("/configs/:id/rules/:type", s.deleteRule)
	api.Get("/rules", s.allRules)

	api.Post("/configs/:id/analyze", s.analyze)
	api.Post("/configs/:id/discover", s.discover)
}

func paramID(c fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id must be a positive integer")
	}
	return id, nil
}

func paramRuleType(c fiber.Ctx) (model.RuleType, error) {
	t := model.RuleType(c.Params("type"))
	if !t.Valid() {
		return "", fiber.NewError(fiber.StatusBadRequest, "rule type must be edit or note")
	}
	return t, nil
}

func bindJSON(c fiber.Ctx, v any) error {
	if err := c.Bind().JSON(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func (s *Server) listTeams(c fiber.Ctx) error {
	teams, err := s.store.ListTeams(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(teams)
}

func (s *Server) createTeam(c fiber.Ctx) error {
	var req struct {
		Name string `json:"team_name"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	team, err := s.store.CreateTeam(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (s *Server) deleteTeam(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTeam(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listCategories(c fiber.Ctx) error {
	categories, err := s.store.ListCategories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

func (s *Server) createCategory(c fiber.Ctx) error {
	var req struct {
		Name            string `json:"category_name"`
		TeamID          int    `json:"team_id"`
		SendToL1Monitor bool   `json:"send_to_l1_monitor"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	category, err := s.store.CreateCategory(c.Context(), req.Name, req.TeamID, req.SendToL1Monitor)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (s *Server) deleteCategory(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCategory(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// configRequest is the body of config create and update. A nil TeamIDs
// leaves the team associations untouched.
type configRequest struct {
	Mapping model.ColumnMapping `json:"column_mappings"`
	Name    string              `json:"config_name"`
	TeamIDs []int               `json:"team_ids"`
}

func (s *Server) listConfigs(c fiber.Ctx) error {
	configs, err := s.store.ListClientConfigs(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(configs)
}

func (s *Server) getConfig(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	cfg, err := s.store.GetClientConfig(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}

func (s *Server) createConfig(c fiber.Ctx) error {
	var req configRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	cfg, err := s.store.CreateClientConfig(c.Context(), req.Name, req.Mapping)
	if err != nil {
		return err
	}
	if cfg, err = s.saveTeams(c, cfg, req.TeamIDs); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

func (s *Server) updateConfig(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req configRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	cfg, err := s.store.UpdateClientConfig(c.Context(), id, req.Name, req.Mapping)
	if err != nil {
		return err
	}
	if cfg, err = s.saveTeams(c, cfg, req.TeamIDs); err != nil {
		return err
	}
	return c.JSON(cfg)
}

func (s *Server) saveTeams(c fiber.Ctx, cfg *model.ClientConfig, teamIDs []int) (*model.ClientConfig, error) {
	if teamIDs == nil {
		return cfg, nil
	}
	if err := s.store.SetClientTeams(c.Context(), cfg.ID, teamIDs); err != nil {
		return nil, err
	}
	return s.store.GetClientConfig(c.Context(), cfg.ID)
}

func (s *Server) deleteConfig(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteClientConfig(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listRules(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ruleType, err := paramRuleType(c)
	if err != nil {
		return err
	}
	rules, err := s.store.ListRules(c.Context(), id, ruleType)
	if err != nil {
		return err
	}
	if rules == nil {
		rules = []model.Rule{}
	}
	return c.JSON(rules)
}

func (s *Server) upsertRules(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ruleType, err := paramRuleType(c)
	if err != nil {
		return err
	}
	var items []service.RuleAssignment
	if err := bindJSON(c, &items); err != nil {
		return err
	}
	if err := s.store.UpsertRules(c.Context(), id, ruleType, items); err != nil {
		return err
	}
	rules, err := s.store.ListRules(c.Context(), id, ruleType)
	if err != nil {
		return err
	}
	return c.JSON(rules)
}

func (s *Server) deleteRule(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ruleType, err := paramRuleType(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRule(c.Context(), id, ruleType, c.Query("text")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) allRules(c fiber.Ctx) error {
	rs, err := s.store.ListAllRules(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(rs)
}
