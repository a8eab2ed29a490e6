package server

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/discovery"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/rules"
	"github.com/Veraticus/claims-triage/internal/spreadsheet"
)

// AnalyzeResponse is returned by the analyze endpoint.
type AnalyzeResponse struct {
	Queue   []model.ProcessedClaim `json:"queue"`
	Summary analysis.Summary       `json:"summary"`
}

// upload parses the multipart "file" field of the request.
func upload(c fiber.Ctx) (*spreadsheet.Sheet, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, `multipart field "file" is required`)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return spreadsheet.Parse(f, fh.Filename)
}

func queueOptions(c fiber.Ctx) (analysis.QueueOptions, int, error) {
	key, err := analysis.ParseSortKey(c.Query("sort"))
	if err != nil {
		return analysis.QueueOptions{}, 0, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	opts := analysis.QueueOptions{Category: c.Query("category"), SortKey: key}
	if v := c.Query("ascending"); v != "" {
		if opts.Ascending, err = strconv.ParseBool(v); err != nil {
			return opts, 0, fiber.NewError(fiber.StatusBadRequest, "ascending must be a boolean")
		}
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return opts, 0, fiber.NewError(fiber.StatusBadRequest, "limit must be a non-negative integer")
		}
	}
	return opts, limit, nil
}

func (s *Server) analyze(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	opts, limit, err := queueOptions(c)
	if err != nil {
		return err
	}
	cfg, err := s.store.GetClientConfig(c.Context(), id)
	if err != nil {
		return err
	}
	sheet, err := upload(c)
	if err != nil {
		return err
	}
	rs, err := rules.Load(c.Context(), s.store, cfg.ID)
	if err != nil {
		return err
	}

	result := s.analyzer.Analyze(sheet.Rows, cfg.Mapping, rs)
	queue := analysis.WorkQueue(result.Claims, opts)
	if limit > 0 && len(queue) > limit {
		queue = queue[:limit]
	}

	summary := analysis.Summarize(result)
	s.logger.Info("analyzed upload",
		"client", cfg.Name,
		"run_id", summary.RunID,
		"claims", summary.Metrics.TotalClaims,
		"actionable", summary.Actionable)

	return c.JSON(AnalyzeResponse{Summary: summary, Queue: queue})
}

func (s *Server) discover(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	cfg, err := s.store.GetClientConfig(c.Context(), id)
	if err != nil {
		return err
	}
	if err := discovery.CheckMapping(cfg.Mapping); err != nil {
		return err
	}
	sheet, err := upload(c)
	if err != nil {
		return err
	}
	rs, err := rules.Load(c.Context(), s.store, cfg.ID)
	if err != nil {
		return err
	}

	found := discovery.Discover(sheet.Rows, cfg.Mapping, rules.Texts(rs.EditRules), rules.Texts(rs.NoteRules))
	if found.Edits == nil {
		found.Edits = []model.UncategorizedItem{}
	}
	if found.Notes == nil {
		found.Notes = []model.UncategorizedItem{}
	}
	return c.JSON(found)
}
