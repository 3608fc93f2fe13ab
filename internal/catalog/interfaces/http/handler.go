// Package http 回测目录控制台 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/quantconsole/internal/catalog/application"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// ConsoleHandler 负责处理回测目录控制台的 HTTP 请求
type ConsoleHandler struct {
	query     *application.CatalogQueryService
	cmd       *application.CatalogCommandService
	batch     *application.BatchService
	selection *application.SelectionService
	tracker   *application.JobTracker
}

// NewConsoleHandler 创建 HTTP 处理器
func NewConsoleHandler(
	query *application.CatalogQueryService,
	cmd *application.CatalogCommandService,
	batch *application.BatchService,
	selection *application.SelectionService,
	tracker *application.JobTracker,
) *ConsoleHandler {
	return &ConsoleHandler{query: query, cmd: cmd, batch: batch, selection: selection, tracker: tracker}
}

// RegisterRoutes 注册路由
func (h *ConsoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/console")
	{
		api.GET("/presets", h.ListPresets)

		api.GET("/runs", h.ListRuns)
		api.GET("/runs/viewport", h.ViewportRuns)
		api.GET("/runs/:id", h.GetRun)
		api.PUT("/runs/:id/alias", h.SetAlias)
		api.PUT("/runs/:id/pin", h.SetPinned)
		api.POST("/runs/bulk", h.BulkAction)

		api.GET("/selection/:scope", h.GetSelection)
		api.POST("/selection/:scope/toggle", h.ToggleSelection)
		api.POST("/selection/:scope/all", h.SelectAll)
		api.POST("/selection/:scope/topn", h.SelectTopN)
		api.DELETE("/selection/:scope", h.ClearSelection)
		api.GET("/selection/:scope/comparison", h.Comparison)

		api.GET("/batches", h.ListBatches)
		api.GET("/batches/:id", h.GetBatch)
		api.GET("/batches/:id/variants", h.ListVariants)
		api.GET("/batches/:id/shortlist", h.LoadShortlist)
		api.POST("/batches/:id/shortlist", h.SaveShortlist)

		api.POST("/jobs/:id/track", h.TrackJob)
		api.GET("/jobs/current", h.CurrentJob)
		api.DELETE("/jobs/current", h.StopTracking)
	}
}

// ListPresets 返回可用的排序预设
func (h *ConsoleHandler) ListPresets(c *gin.Context) {
	response.Success(c, h.query.Presets())
}

func bindListQuery(c *gin.Context) (application.ListRunsQuery, error) {
	var criteria domain.FilterCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		return application.ListRunsQuery{}, err
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("include_archived", "false"))
	return application.ListRunsQuery{
		Criteria:        criteria,
		SortKey:         c.Query("sort_key"),
		Direction:       domain.SortDirection(c.Query("direction")),
		Preset:          c.Query("preset"),
		Page:            page,
		PageSize:        pageSize,
		IncludeArchived: includeArchived,
	}, nil
}

// ListRuns 分页返回筛选排序后的运行目录
func (h *ConsoleHandler) ListRuns(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	page, err := h.query.ListRuns(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, application.ErrUnknownPreset) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to list runs", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, page)
}

// ViewportRuns 返回滚动窗口内的行，用于超大结果集的虚拟化渲染
func (h *ConsoleHandler) ViewportRuns(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	rowHeight, _ := strconv.Atoi(c.DefaultQuery("row_height", "32"))
	viewportHeight, _ := strconv.Atoi(c.DefaultQuery("viewport_height", "640"))
	scrollTop, _ := strconv.Atoi(c.DefaultQuery("scroll_top", "0"))
	overscan, _ := strconv.Atoi(c.DefaultQuery("overscan", "5"))

	vp, err := h.query.ViewportRuns(c.Request.Context(), q, application.ViewportQuery{
		RowHeight:      rowHeight,
		ViewportHeight: viewportHeight,
		ScrollTop:      scrollTop,
		Overscan:       overscan,
	})
	if err != nil {
		if errors.Is(err, application.ErrUnknownPreset) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to build viewport", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, vp)
}

// GetRun 返回单条运行详情及各指标评级
func (h *ConsoleHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	run, err := h.query.GetRun(c.Request.Context(), id)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get run", "run_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if run == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "run not found", "")
		return
	}
	response.Success(c, gin.H{
		"run":    run,
		"grades": domain.RunGrades(run),
	})
}

// SetAlias 设置运行别名，空串表示清除
func (h *ConsoleHandler) SetAlias(c *gin.Context) {
	var req struct {
		Alias string `json:"alias"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	id := c.Param("id")
	if err := h.cmd.SetAlias(c.Request.Context(), id, req.Alias); err != nil {
		logging.Error(c.Request.Context(), "Failed to set alias", "run_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"run_id": id, "alias": req.Alias})
}

// SetPinned 设置运行置顶标记
func (h *ConsoleHandler) SetPinned(c *gin.Context) {
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	id := c.Param("id")
	if err := h.cmd.SetPinned(c.Request.Context(), id, req.Pinned); err != nil {
		logging.Error(c.Request.Context(), "Failed to set pinned", "run_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"run_id": id, "pinned": req.Pinned})
}

// BulkAction 对选中运行执行批量归档/恢复/删除
func (h *ConsoleHandler) BulkAction(c *gin.Context) {
	var req struct {
		Action string   `json:"action" binding:"required"`
		RunIDs []string `json:"run_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	affected, err := h.cmd.BulkAction(c.Request.Context(), req.Action, req.RunIDs)
	if err != nil {
		if errors.Is(err, application.ErrEmptyBulkSelection) || errors.Is(err, application.ErrUnknownBulkAction) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to apply bulk action", "action", req.Action, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"action": req.Action, "affected": affected})
}

// GetSelection 返回作用域内当前选集
func (h *ConsoleHandler) GetSelection(c *gin.Context) {
	scope := c.Param("scope")
	ids, err := h.selection.Get(c.Request.Context(), scope)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get selection", "scope", scope, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"scope": scope, "ids": ids})
}

// ToggleSelection 切换单条运行的选中状态
func (h *ConsoleHandler) ToggleSelection(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	scope := c.Param("scope")

	selected, count, err := h.selection.Toggle(c.Request.Context(), scope, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSelectionFull) {
			response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to toggle selection", "scope", scope, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"selected": selected, "count": count})
}

// SelectAll 将给定运行集并入选集
func (h *ConsoleHandler) SelectAll(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	scope := c.Param("scope")

	count, err := h.selection.SelectAll(c.Request.Context(), scope, req.IDs)
	if err != nil {
		if errors.Is(err, domain.ErrSelectionFull) {
			// 超限部分被截断，已并入的选集仍然生效
			response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to select all", "scope", scope, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"count": count})
}

// SelectTopN 按指标选出前 N 条并替换选集
func (h *ConsoleHandler) SelectTopN(c *gin.Context) {
	var req struct {
		Metric string `json:"metric" binding:"required"`
		N      int    `json:"n"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	scope := c.Param("scope")

	ids, err := h.selection.SelectTopN(c.Request.Context(), scope, domain.MetricKey(req.Metric), req.N)
	if err != nil {
		if errors.Is(err, application.ErrInvalidMetric) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to select top-n", "scope", scope, "metric", req.Metric, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"ids": ids, "count": len(ids)})
}

// ClearSelection 清空作用域内的选集
func (h *ConsoleHandler) ClearSelection(c *gin.Context) {
	scope := c.Param("scope")
	if err := h.selection.Clear(c.Request.Context(), scope); err != nil {
		logging.Error(c.Request.Context(), "Failed to clear selection", "scope", scope, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"scope": scope, "count": 0})
}

// Comparison 基于当前选集构建对比预览
func (h *ConsoleHandler) Comparison(c *gin.Context) {
	scope := c.Param("scope")
	preview, err := h.selection.Comparison(c.Request.Context(), scope)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to build comparison", "scope", scope, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, preview)
}

// ListBatches 分页返回研究批次
func (h *ConsoleHandler) ListBatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	batches, total, err := h.batch.ListBatches(c.Request.Context(), page, pageSize)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to list batches", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"batches": batches, "total": total, "page": page, "page_size": pageSize})
}

// GetBatch 返回批次详情
func (h *ConsoleHandler) GetBatch(c *gin.Context) {
	id := c.Param("id")
	batch, err := h.batch.GetBatch(c.Request.Context(), id)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get batch", "batch_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if batch == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "batch not found", "")
		return
	}
	response.Success(c, batch)
}

// ListVariants 分页返回批次内的变体结果
func (h *ConsoleHandler) ListVariants(c *gin.Context) {
	id := c.Param("id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	passingOnly, _ := strconv.ParseBool(c.DefaultQuery("passing_only", "false"))

	variants, total, err := h.batch.ListVariants(c.Request.Context(), id, passingOnly, page, pageSize)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to list variants", "batch_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"variants": variants, "total": total, "page": page, "page_size": pageSize})
}

// LoadShortlist 读取批次入围快照
func (h *ConsoleHandler) LoadShortlist(c *gin.Context) {
	id := c.Param("id")
	entries, err := h.batch.LoadShortlist(c.Request.Context(), id)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to load shortlist", "batch_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"batch_id": id, "entries": entries})
}

// SaveShortlist 将选中变体固化为批次入围快照
func (h *ConsoleHandler) SaveShortlist(c *gin.Context) {
	var req struct {
		VariantIDs []string `json:"variant_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	id := c.Param("id")

	entries, err := h.batch.SaveShortlist(c.Request.Context(), id, req.VariantIDs)
	if err != nil {
		if errors.Is(err, domain.ErrEmptySelection) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to save shortlist", "batch_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if entries == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "batch not found", "")
		return
	}
	response.Success(c, gin.H{"batch_id": id, "entries": entries})
}

// TrackJob 开始跟踪新任务，取消此前跟踪中的任务
func (h *ConsoleHandler) TrackJob(c *gin.Context) {
	id := c.Param("id")
	h.tracker.Track(id)
	response.Success(c, gin.H{"job_id": id, "state": application.JobStateSubmitted})
}

// CurrentJob 返回当前跟踪任务的快照
func (h *ConsoleHandler) CurrentJob(c *gin.Context) {
	job, ok := h.tracker.Snapshot()
	if !ok {
		response.Success(c, gin.H{"state": application.JobStateIdle})
		return
	}
	response.Success(c, job)
}

// StopTracking 停止跟踪当前任务
func (h *ConsoleHandler) StopTracking(c *gin.Context) {
	h.tracker.Stop()
	response.Success(c, gin.H{"state": application.JobStateIdle})
}
