package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"saevis/adapters/excel"
	"saevis/app"
	"saevis/domain/core"
	"saevis/domain/distribution"
	"saevis/domain/threshold"
	"saevis/internal/errors"
	"saevis/internal/layout"
	"saevis/ports"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleHelp(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.helpHTML)
}

func (s *Server) handleFilterOptions(c *gin.Context) {
	opts, err := s.service.FilterOptions(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.service.Sessions().Create()
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID})
}

func (s *Server) handleCloseSession(c *gin.Context) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.renderError(c, errors.InvalidInput("malformed session id"))
		return
	}
	s.service.CloseSession(id)
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (s *Server) handleApplyFilters(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var sel ports.FilterSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		s.renderError(c, errors.InvalidInput("malformed filter selection"))
		return
	}
	if err := s.service.ApplyFilters(c.Request.Context(), sess, sel); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filters":        sel,
		"issues":         sess.LastIssues(),
		"last_refreshed": sess.LastRefreshed(),
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := s.service.Refresh(c.Request.Context(), sess); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": sess.LastIssues()})
}

func (s *Server) handleDeactivate(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	s.service.Deactivate(sess)
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (s *Server) handleThresholdSnapshot(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Store.Snapshot())
}

type thresholdWrite struct {
	GroupID string           `json:"group_id"`
	NodeID  string           `json:"node_id"`
	Metric  threshold.Metric `json:"metric"`
	Value   float64          `json:"value"`
}

func (s *Server) handleSetGlobal(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req thresholdWrite
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, errors.InvalidInput("malformed threshold write"))
		return
	}
	if err := s.service.SetGlobal(sess, req.Metric, req.Value); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) handleSetGroup(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req thresholdWrite
	if err := c.ShouldBindJSON(&req); err != nil || req.GroupID == "" {
		s.renderError(c, errors.InvalidInput("malformed threshold write"))
		return
	}
	if err := s.service.SetGroup(sess, core.GroupID(req.GroupID), req.Metric, req.Value); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) handleSetIndividual(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req thresholdWrite
	if err := c.ShouldBindJSON(&req); err != nil || req.NodeID == "" {
		s.renderError(c, errors.InvalidInput("malformed threshold write"))
		return
	}
	if err := s.service.SetIndividual(sess, core.NodeID(req.NodeID), req.Metric, req.Value); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type thresholdClear struct {
	GroupID string             `json:"group_id"`
	NodeID  string             `json:"node_id"`
	Metrics []threshold.Metric `json:"metrics"`
}

func (s *Server) handleClearGroup(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req thresholdClear
	if err := c.ShouldBindJSON(&req); err != nil || req.GroupID == "" {
		s.renderError(c, errors.InvalidInput("malformed threshold clear"))
		return
	}
	s.service.ClearGroup(sess, core.GroupID(req.GroupID), req.Metrics...)
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) handleClearIndividual(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req thresholdClear
	if err := c.ShouldBindJSON(&req); err != nil || req.NodeID == "" {
		s.renderError(c, errors.InvalidInput("malformed threshold clear"))
		return
	}
	s.service.ClearIndividual(sess, core.NodeID(req.NodeID), req.Metrics...)
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) handleResetThresholds(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	s.service.ResetThresholds(sess)
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) handleEffective(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	node := core.NodeID(c.Query("node"))
	metric := threshold.Metric(c.Query("metric"))
	value, err := s.service.Effective(sess, node, metric)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"node":   node,
		"metric": metric,
		"value":  value,
		"group":  threshold.GroupFor(node, metric),
	})
}

func (s *Server) handleGroupMembers(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	group := core.GroupID(c.Param("group"))
	metric := threshold.Metric(c.Query("metric"))
	members, err := s.service.Members(sess, group, metric)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group, "metric": metric, "members": members})
}

func (s *Server) handleHistogram(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	metric := threshold.Metric(c.Query("metric"))
	hl, issues, err := s.service.HistogramView(sess, metric, queryFloat(c, "width"), queryFloat(c, "height"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if len(issues) > 0 {
		c.JSON(http.StatusOK, gin.H{"issues": issues})
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": hl, "issues": []string{}})
}

func (s *Server) handleStack(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	sl, issues, err := s.service.StackedView(sess, nil, queryFloat(c, "width"), queryFloat(c, "height"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if len(issues) > 0 {
		c.JSON(http.StatusOK, gin.H{"issues": issues})
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": sl, "issues": []string{}})
}

func (s *Server) handleFlow(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	fl, issues, err := s.service.FlowView(sess, queryFloat(c, "width"), queryFloat(c, "height"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if len(issues) > 0 {
		c.JSON(http.StatusOK, gin.H{"issues": issues})
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": fl, "issues": []string{}})
}

type panelRequest struct {
	Anchor   layout.Point `json:"anchor"`
	Size     layout.Size  `json:"size"`
	Viewport layout.Rect  `json:"viewport"`
}

func (s *Server) handlePlacePanel(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req panelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, errors.InvalidInput("malformed panel request"))
		return
	}
	c.JSON(http.StatusOK, s.service.PlacePanel(sess, req.Anchor, req.Size, req.Viewport))
}

func (s *Server) handleSetPanelOverride(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var p layout.Point
	if err := c.ShouldBindJSON(&p); err != nil {
		s.renderError(c, errors.InvalidInput("malformed panel position"))
		return
	}
	sess.SetPanelOverride(p)
	c.JSON(http.StatusOK, gin.H{"status": "pinned"})
}

func (s *Server) handleClearPanelOverride(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	sess.ClearPanelOverride()
	c.JSON(http.StatusOK, gin.H{"status": "unpinned"})
}

func (s *Server) handleExport(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	exp := excel.Export{
		Thresholds:    sess.Store.Snapshot(),
		Distributions: make(map[threshold.Metric]distribution.Distribution),
	}
	for _, m := range threshold.AllMetrics() {
		if d, ok := sess.Distribution(m); ok {
			exp.Distributions[m] = d
		}
	}
	if g, ok := sess.Graph(); ok {
		exp.Graph = &g
		exp.Filters = g.AppliedFilters
	}

	data, err := s.exporter.Workbook(exp)
	if err != nil {
		s.renderError(c, errors.InternalError("workbook export failed: "+err.Error()))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dashboard-snapshot.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// session resolves the :id path parameter. On failure it writes the
// error response itself.
func (s *Server) session(c *gin.Context) (*app.Session, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.renderError(c, errors.InvalidInput("malformed session id"))
		return nil, false
	}
	sess, err := s.service.Sessions().Get(id)
	if err != nil {
		s.renderError(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) renderError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeNotFound, errors.CodeSessionNotFound:
		status = http.StatusNotFound
	case errors.CodeProviderError:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func queryFloat(c *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return 0
	}
	return v
}
