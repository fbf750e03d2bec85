package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/albapepper/scoracle-sheets/internal/api/respond"
	"github.com/albapepper/scoracle-sheets/internal/cache"
	"github.com/albapepper/scoracle-sheets/internal/loader"
	"github.com/albapepper/scoracle-sheets/internal/match"
	"github.com/albapepper/scoracle-sheets/internal/pipeline"
	"github.com/albapepper/scoracle-sheets/internal/workbook"
)

// TableResponse is the JSON shape of a rendered table.
type TableResponse struct {
	Columns []string        `json:"columns"`
	Rows    [][]match.Value `json:"rows"`
	BuiltAt time.Time       `json:"built_at"`
}

// TeamEntry describes one team sheet.
type TeamEntry struct {
	Team    string `json:"team"`
	Sheet   string `json:"sheet"`
	Matches int    `json:"matches"`
}

// TeamsResponse lists the team sheets of the workbook.
type TeamsResponse struct {
	Teams   []TeamEntry `json:"teams"`
	Failed  []string    `json:"failed_documents"`
	BuiltAt time.Time   `json:"built_at"`
}

// GetSummary returns the ranked team summary table.
// @Summary Get team summary
// @Description Returns one row per team ranked by points, goal difference, and goals scored. Averages of numeric statistics appear as avg_ columns.
// @Tags report
// @Produce json
// @Success 200 {object} TableResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	report, ok := h.current(w, r)
	if !ok {
		return
	}
	h.serveJSON(w, r, cacheKey("summary", report), cache.TTLReport, func() (interface{}, error) {
		return TableResponse{
			Columns: report.Teams.Columns,
			Rows:    report.Teams.Grid(),
			BuiltAt: report.BuiltAt,
		}, nil
	})
}

// GetMatches returns the flattened match table.
// @Summary Get matches
// @Description Returns every flattened match row, sorted by team then date. Pass team to restrict the rows to one team.
// @Tags report
// @Produce json
// @Param team query string false "Team label"
// @Success 200 {object} TableResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/matches [get]
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	report, ok := h.current(w, r)
	if !ok {
		return
	}
	team := r.URL.Query().Get("team")
	rows := report.Matches.Rows
	if team != "" {
		rows = report.Matches.ForTeam(team)
		if len(rows) == 0 {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("no matches for team %q", team))
			return
		}
	}
	h.serveJSON(w, r, cacheKey("matches:"+team, report), cache.TTLReport, func() (interface{}, error) {
		return TableResponse{
			Columns: report.Matches.Columns,
			Rows:    report.Matches.Grid(rows),
			BuiltAt: report.BuiltAt,
		}, nil
	})
}

// GetTeams lists teams with their sheet names and match counts.
// @Summary List teams
// @Description Returns every team with its worksheet name and match count, plus documents that failed to load.
// @Tags report
// @Produce json
// @Success 200 {object} TeamsResponse
// @Failure 409 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/teams [get]
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	report, ok := h.current(w, r)
	if !ok {
		return
	}
	h.serveJSON(w, r, cacheKey("teams", report), cache.TTLReport, func() (interface{}, error) {
		teams := report.Matches.Teams()
		names, err := workbook.SheetNames(teams)
		if err != nil {
			return nil, err
		}
		resp := TeamsResponse{Teams: make([]TeamEntry, 0, len(teams)), Failed: []string{}, BuiltAt: report.BuiltAt}
		for _, t := range teams {
			resp.Teams = append(resp.Teams, TeamEntry{
				Team:    t,
				Sheet:   names[t],
				Matches: len(report.Matches.ForTeam(t)),
			})
		}
		for _, f := range report.Load.Failures {
			resp.Failed = append(resp.Failed, f.Path)
		}
		return resp, nil
	})
}

// GetWorkbook downloads the report as an xlsx workbook.
// @Summary Download workbook
// @Description Returns the All Matches, Team Summary, and per-team sheets as one xlsx file.
// @Tags report
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 409 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/workbook [get]
func (h *Handler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	report, ok := h.current(w, r)
	if !ok {
		return
	}
	filename := workbook.DefaultFileName(h.cfg.InputDir, report.BuiltAt)
	key := cacheKey("workbook", report)
	ttl := cache.TTLWorkbook

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteFile(w, data, respond.XLSXContentType, filename, etag, ttl, true)
		return
	}

	data, err := workbook.Bytes(report.Matches, report.Teams)
	if err != nil {
		writeBuildError(w, err)
		return
	}
	etag := h.cache.Set(key, data, ttl)
	respond.WriteFile(w, data, respond.XLSXContentType, filename, etag, ttl, false)
}

// current fetches the report, writing an error response when none exists.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) (*pipeline.Report, bool) {
	report, err := h.reports.Current(r.Context())
	if err != nil {
		if errors.Is(err, loader.ErrNoData) {
			respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "NO_DATA",
				"No match data found", err.Error())
			return nil, false
		}
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "REPORT_UNAVAILABLE",
			"Report could not be built", err.Error())
		return nil, false
	}
	h.dropSuperseded(report)
	return report, true
}

// dropSuperseded purges cached bodies once a newer report replaces the one
// they were rendered from.
func (h *Handler) dropSuperseded(report *pipeline.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if report.BuiltAt.Equal(h.builtAt) {
		return
	}
	if !h.builtAt.IsZero() {
		h.cache.Purge()
	}
	h.builtAt = report.BuiltAt
}

// serveJSON answers from cache or renders, caches, and writes the body.
func (h *Handler) serveJSON(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, render func() (interface{}, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := render()
	if err != nil {
		writeBuildError(w, err)
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode response")
		return
	}
	etag := h.cache.Set(key, raw, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, raw, etag, ttl, false)
}

func writeBuildError(w http.ResponseWriter, err error) {
	if errors.Is(err, workbook.ErrNameCollision) {
		respond.WriteErrorDetail(w, http.StatusConflict, "SHEET_NAME_COLLISION",
			"Two teams map to the same worksheet name", err.Error())
		return
	}
	respond.WriteErrorDetail(w, http.StatusInternalServerError, "BUILD_FAILED",
		"Failed to build workbook", err.Error())
}

// cacheKey scopes a key to one report build.
func cacheKey(name string, report *pipeline.Report) string {
	return fmt.Sprintf("%s:%d", name, report.BuiltAt.UnixNano())
}
